package completion

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robottwo/sawsh/internal/grammar"
)

func testGrammar(t *testing.T) *grammar.Store {
	t.Helper()
	fsys := fstest.MapFS{
		"data/test.yaml": &fstest.MapFile{Data: []byte(`
root: aws
commands:
  ec2: [describe-instances, describe-volumes, start-instances]
  s3: [ls, cp]
  iam: [list-users]
global_options: [--output, --profile, --region]
resource_options:
  describe-instances: [--instance-ids, --instance-state-name, --filters]
option_values:
  --instance-state-name:
    values: [pending, running, stopped, terminated]
  --output:
    values: [json, table, text]
  --instance-ids:
    resource: ec2-instance-ids
`)},
	}
	store, err := grammar.Load(fsys)
	require.NoError(t, err)
	return store
}

func TestResolveContext(t *testing.T) {
	store := testGrammar(t)

	tests := []struct {
		name string
		line string
		want Context
	}{
		{
			name: "empty line is command position",
			line: "",
			want: Context{Kind: KindCommand},
		},
		{
			name: "root token alone is command position",
			line: "aws",
			want: Context{Kind: KindCommand},
		},
		{
			name: "partial command",
			line: "ec",
			want: Context{Kind: KindCommand, Partial: "ec"},
		},
		{
			name: "partial command after root",
			line: "aws ec",
			want: Context{Kind: KindCommand, Partial: "ec"},
		},
		{
			name: "exact command advances without a space",
			line: "ec2",
			want: Context{Kind: KindSubCommand, Command: "ec2"},
		},
		{
			name: "committed command",
			line: "ec2 ",
			want: Context{Kind: KindSubCommand, Command: "ec2"},
		},
		{
			name: "partial subcommand",
			line: "ec2 descr",
			want: Context{Kind: KindSubCommand, Command: "ec2", Partial: "descr"},
		},
		{
			name: "exact subcommand advances to options",
			line: "ec2 describe-instances",
			want: Context{Kind: KindOption, Command: "ec2", SubCommand: "describe-instances"},
		},
		{
			name: "committed subcommand",
			line: "aws ec2 describe-instances ",
			want: Context{Kind: KindOption, Command: "ec2", SubCommand: "describe-instances"},
		},
		{
			name: "partial option",
			line: "ec2 describe-instances --inst",
			want: Context{Kind: KindOption, Command: "ec2", SubCommand: "describe-instances", Partial: "--inst"},
		},
		{
			name: "enumerated option value",
			line: "ec2 describe-instances --instance-state-name ru",
			want: Context{Kind: KindOptionValue, Command: "ec2", SubCommand: "describe-instances", Option: "--instance-state-name", Partial: "ru"},
		},
		{
			name: "value position after committed option",
			line: "ec2 describe-instances --instance-state-name ",
			want: Context{Kind: KindOptionValue, Command: "ec2", SubCommand: "describe-instances", Option: "--instance-state-name"},
		},
		{
			name: "exact option taking a value advances",
			line: "ec2 describe-instances --instance-ids",
			want: Context{Kind: KindOptionValue, Command: "ec2", SubCommand: "describe-instances", Option: "--instance-ids"},
		},
		{
			name: "consumed value returns to option position",
			line: "ec2 describe-instances --instance-state-name running --fil",
			want: Context{Kind: KindOption, Command: "ec2", SubCommand: "describe-instances", Partial: "--fil"},
		},
		{
			name: "unknown first token never advances",
			line: "route53 list",
			want: Context{Kind: KindCommand, Partial: "list"},
		},
		{
			name: "unknown subcommand stays in subcommand position",
			line: "ec2 nonsense --inst",
			want: Context{Kind: KindSubCommand, Command: "ec2", Partial: "--inst"},
		},
		{
			name: "subcommand name under the wrong parent does not advance",
			line: "s3 describe-instances ",
			want: Context{Kind: KindSubCommand, Command: "s3"},
		},
		{
			name: "option without known values stays in option position",
			line: "ec2 describe-instances --filters ",
			want: Context{Kind: KindOption, Command: "ec2", SubCommand: "describe-instances"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveContext(store, tt.line))
		})
	}
}
