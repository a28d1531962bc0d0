package main

import "github.com/FleexSecurity/funcdeploy/cmd"

func main() {
	cmd.Execute()
}
