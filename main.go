package main

import "github.com/kerokon/solana-trading-sdk/cmd"

func main() {
	cmd.Execute()
}
