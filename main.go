/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/jjudge-oj/glossary/cmd"

func main() {
	cmd.Execute()
}
