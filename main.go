package main

import "github.com/hibeautyss/tma-clean/cmd"

func main() {
	cmd.Execute()
}
