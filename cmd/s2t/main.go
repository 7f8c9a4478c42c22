package main

import (
	"s2t/cmd/s2t/cmd"

	// Import providers to register them
	_ "s2t/internal/app/api/openai/whisper"
	_ "s2t/internal/app/api/whisper_server"
)

func main() {
	cmd.Execute()
}
