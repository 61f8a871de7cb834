package main

import "github.com/Gh0styTongue/tubi-frontend-source-sub002/internal/cmd"

func main() {
	cmd.Execute()
}
