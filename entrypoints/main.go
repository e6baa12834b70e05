package main

import (
	"github.com/Laisky/aws-documentation-mcp/cmd"
)

func main() {
	cmd.Execute()
}
