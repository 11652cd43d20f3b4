package main

import "github.com/ardanlabs/blocktrading/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
