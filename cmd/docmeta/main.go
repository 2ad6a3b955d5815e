package main

import "github.com/mvp-joe/docmeta/internal/cli"

func main() {
	cli.Execute()
}
