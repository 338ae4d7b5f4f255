package resource

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"
)

// Resource kinds known to the CLI fetcher.
const (
	KindInstanceIDs       = "ec2-instance-ids"
	KindInstanceTagKeys   = "ec2-instance-tag-keys"
	KindInstanceTagValues = "ec2-instance-tag-values"
	KindBucketNames       = "s3-bucket-names"
	KindBucketURIs        = "s3-bucket-uris"
)

// listingArgs maps each resource kind to the aws CLI invocation that lists
// its current values as plain text output.
var listingArgs = map[string][]string{
	KindInstanceIDs: {
		"ec2", "describe-instances",
		"--query", "Reservations[].Instances[].InstanceId",
		"--output", "text",
	},
	KindInstanceTagKeys: {
		"ec2", "describe-instances",
		"--query", "Reservations[].Instances[].Tags[].Key",
		"--output", "text",
	},
	KindInstanceTagValues: {
		"ec2", "describe-instances",
		"--query", "Reservations[].Instances[].Tags[].Value",
		"--output", "text",
	},
	KindBucketNames: {
		"s3api", "list-buckets",
		"--query", "Buckets[].Name",
		"--output", "text",
	},
	KindBucketURIs: {
		"s3api", "list-buckets",
		"--query", "Buckets[].Name",
		"--output", "text",
	},
}

// Kinds returns every resource kind the CLI fetcher can list.
func Kinds() []string {
	kinds := make([]string, 0, len(listingArgs))
	for kind := range listingArgs {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// CLIFetcher fetches resource values by running the wrapped aws CLI.
type CLIFetcher struct {
	// Command is the executable to invoke, "aws" unless overridden in tests.
	Command string
}

// NewCLIFetcher creates a fetcher invoking the aws executable.
func NewCLIFetcher() *CLIFetcher {
	return &CLIFetcher{Command: "aws"}
}

// Fetch runs the listing command for kind and parses its text output into
// a sorted, deduplicated value list.
func (f *CLIFetcher) Fetch(ctx context.Context, kind string) ([]string, error) {
	args, ok := listingArgs[kind]
	if !ok {
		return nil, fmt.Errorf("unknown resource kind %q", kind)
	}

	cmd := exec.CommandContext(ctx, f.Command, args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}

	values := ParseListOutput(string(output))
	if kind == KindBucketURIs {
		for i, v := range values {
			values[i] = "s3://" + v
		}
	}
	return values, nil
}

// ParseListOutput splits the text-mode output of an aws listing command
// into individual values. Text output separates values with tabs and
// newlines; "None" rows (empty query results) are discarded.
func ParseListOutput(output string) []string {
	fields := strings.Fields(output)
	seen := make(map[string]bool, len(fields))
	values := make([]string, 0, len(fields))
	for _, field := range fields {
		if field == "None" || seen[field] {
			continue
		}
		seen[field] = true
		values = append(values, field)
	}
	sort.Strings(values)
	return values
}
