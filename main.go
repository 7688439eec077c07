package main

import "supplier-compliance-backend/cmd"

func main() {
	cmd.Execute()
}
