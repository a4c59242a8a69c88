// main is the entry point for the covidload CLI.
package main

import (
	"fmt"
	"os"

	"github.com/statlake/covidload/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}
