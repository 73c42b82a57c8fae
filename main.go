package main

import "github/chapool/orderbook-scripts/cmd"

func main() {
	cmd.Execute()
}
