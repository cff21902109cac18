package main

import "github.com/zhang-bin/ludo-framework-sub000/cmd"

func main() {
	cmd.Execute()
}
