package main

import "shortplay-scraper/cmd"

func main() {
	cmd.Execute()
}
