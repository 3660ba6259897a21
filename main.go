/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package main

import "github.com/Corporate-Prism/EQMS-server-sub000/cmd"

func main() {
	cmd.Execute()
}
