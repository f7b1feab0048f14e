package main

import (
	assistant "github.com/NextShop-AI/assistant-go"
)

func main() {
	bot := assistant.New(assistant.Config{
		Categories: []string{
			"men's clothing", "women's clothing", "electronics", "jewelery",
		},
	})

	bot.Start("8080")
}
