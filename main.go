package main

import "stac-stocktake/cmd"

func main() {
	cmd.Execute()
}
