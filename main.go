package main

import (
	"github.com/ConceptCodes/deep-sql-research/cmd"
	"github.com/ConceptCodes/deep-sql-research/internal/logger"
)

func main() {
	defer logger.HandlePanic()
	cmd.Execute()
}
