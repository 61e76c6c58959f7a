package main

import "github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/cli"

func main() {
	cli.Execute()
}
