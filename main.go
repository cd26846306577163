/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/placement-tracker/apiserver/cmd"

func main() {
	cmd.Execute()
}
