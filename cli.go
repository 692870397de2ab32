package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"studymate/app/service/assistant"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
)

func runOnce(ctx context.Context, di *do.Injector, message, sessionID, style string) {
	assistantSvc := do.MustInvoke[*assistant.Service](di)

	response, err := assistantSvc.Ask(ctx, assistant.AskRequest{
		Message:   message,
		SessionID: sessionID,
		Style:     style,
	})
	if err != nil {
		log.Fatalf("ask failed: %v", err)
	}

	printStructured(response)
}

func runInteractive(ctx context.Context, di *do.Injector, sessionID, style string) {
	assistantSvc := do.MustInvoke[*assistant.Service](di)

	fmt.Println("Type your question. Ctrl+C to exit.")

	lines := make(chan string)
	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Print("You> ")

		select {
		case <-ctx.Done():
			fmt.Println("\nGoodbye!")
			return

		case line, ok := <-lines:
			if !ok {
				fmt.Println("\nGoodbye!")
				return
			}
			if line == "" {
				continue
			}

			response, err := assistantSvc.Ask(ctx, assistant.AskRequest{
				Message:   line,
				SessionID: sessionID,
				Style:     style,
			})
			if err != nil {
				// keep the session alive, show the failure inline
				fmt.Printf("Error: %v\n", err)
				continue
			}

			printStructured(response)
		}
	}
}

func printStructured(response *assistant.StructuredResponse) {
	fmt.Println()
	fmt.Println("Answer")
	fmt.Println(response.Answer)

	if len(response.KeyPoints) > 0 {
		fmt.Println()
		fmt.Println("Key Points")
		for _, point := range response.KeyPoints {
			fmt.Println("- " + point)
		}
	}

	if len(response.SuggestedQuestions) > 0 {
		fmt.Println()
		fmt.Println("Suggested Questions")
		for _, question := range response.SuggestedQuestions {
			fmt.Println("- " + question)
		}
	}

	if len(response.References) > 0 {
		fmt.Println()
		fmt.Println("References")
		for _, reference := range response.References {
			fmt.Println("- " + reference)
		}
	}

	fmt.Println()
}
