package main

import "github.com/KaramelBytes/scoreloom/cmd"

func main() {
	cmd.Execute()
}
