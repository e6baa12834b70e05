package docs

import (
	"regexp"
	"strings"

	errors "github.com/Laisky/errors/v2"
)

// Tool names exposed by the documentation server.
const (
	ToolReadDocumentation    = "read_documentation"
	ToolSearchDocumentation  = "search_documentation"
	ToolRecommend            = "recommend"
	ToolGetAvailableServices = "get_available_services"
)

// Partition names.
const (
	PartitionAWS   = "aws"
	PartitionAWSCN = "aws-cn"
)

// Partition describes one documentation site and the tools it supports.
type Partition struct {
	Name string
	// Host is the documentation domain, e.g. docs.aws.amazon.com.
	Host string
	// Tools lists the tool names served for this partition.
	Tools []string
	// ServicesURL is the page listing available services, empty when unsupported.
	ServicesURL string
	// Instructions are sent to MCP clients on initialize.
	Instructions string

	hostPattern *regexp.Regexp
}

// Supports reports whether the partition serves tool.
func (p Partition) Supports(tool string) bool {
	for _, name := range p.Tools {
		if name == tool {
			return true
		}
	}
	return false
}

const awsInstructions = `# AWS Documentation MCP Server

This server provides tools to access public AWS documentation, search for content, and get recommendations.

## Best Practices

- For long documentation pages, make multiple calls to ` + "`read_documentation`" + ` with different ` + "`start_index`" + ` values for pagination
- For very long documents (>30,000 characters), stop reading if you've found the needed information
- When searching, use specific technical terms rather than general phrases
- Use ` + "`recommend`" + ` to discover related content that might not appear in search results
- For recent updates to a service, take any page URL of that service and check the **New** entries returned by ` + "`recommend`" + `
- If several similar searches are not enough, pivot to ` + "`recommend`" + ` to find related pages
- Always cite the documentation URL when providing information to users

## Tool Selection Guide

- Use ` + "`search_documentation`" + ` when you need to find documentation about a specific AWS service or feature
- Use ` + "`read_documentation`" + ` when you have a specific documentation URL and need its content
- Use ` + "`recommend`" + ` when you want content related to a page you are already reading, or newly released information
`

const awsCNInstructions = `# AWS China Documentation MCP Server

This server provides tools to access public AWS China documentation, and get service differences between AWS China and global regions.

## Best Practices

- Always call ` + "`get_available_services`" + ` first to check the available services and their documentation URLs
- If a service is available, read its documentation URL to see the feature differences and other documentation URLs
- For long documentation pages, make multiple calls to ` + "`read_documentation`" + ` with different ` + "`start_index`" + ` values for pagination
- For very long documents (>30,000 characters), stop reading if you've found the needed information
- Always cite the documentation URL when providing information to users

## Tool Selection Guide

- Use ` + "`get_available_services`" + ` when you need to know what services are available in AWS China
- Use ` + "`read_documentation`" + ` when you have a specific documentation URL and need its content
`

var (
	// AWS is the global documentation site.
	AWS = newPartition(Partition{
		Name:         PartitionAWS,
		Host:         "docs.aws.amazon.com",
		Tools:        []string{ToolReadDocumentation, ToolSearchDocumentation, ToolRecommend},
		Instructions: awsInstructions,
	})
	// AWSCN is the AWS China documentation site.
	AWSCN = newPartition(Partition{
		Name:         PartitionAWSCN,
		Host:         "docs.amazonaws.cn",
		Tools:        []string{ToolReadDocumentation, ToolGetAvailableServices},
		ServicesURL:  "https://docs.amazonaws.cn/en_us/aws/latest/userguide/services.html",
		Instructions: awsCNInstructions,
	})
)

func newPartition(p Partition) Partition {
	p.hostPattern = regexp.MustCompile(`^https?://` + regexp.QuoteMeta(p.Host) + `/`)
	return p
}

// PartitionByName resolves a partition name. An empty name selects AWS.
func PartitionByName(name string) (Partition, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PartitionAWS:
		return AWS, nil
	case PartitionAWSCN:
		return AWSCN, nil
	default:
		return Partition{}, errors.Errorf("unknown partition %q, expected %q or %q",
			name, PartitionAWS, PartitionAWSCN)
	}
}
