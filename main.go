package main

import "github.com/frahmantamala/campus-fixit/cmd"

func main() {
	cmd.Execute()
}
