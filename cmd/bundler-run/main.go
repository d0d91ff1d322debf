package main

import "github.com/oshokin/app-bundler/cmd/bundler-run/cmd"

func main() {
	cmd.Execute()
}
