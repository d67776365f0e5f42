// Package main provides the yamlconf CLI tool for rendering flat YAML config files.
package main

import "github.com/mscno/yamlconf/cmd/yamlconf/commands"

func main() {
	commands.Execute(Version)
}
