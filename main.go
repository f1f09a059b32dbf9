package main

import "github.com/ginjaninja78/funding-autofiller/cmd"

func main() {
	cmd.Execute()
}
