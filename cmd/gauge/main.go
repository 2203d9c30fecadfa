package main

import "github.com/mvp-joe/project-gauge/internal/cli"

func main() {
	cli.Execute()
}
