package main

import (
	"alphafactory/cmd"
	"alphafactory/internal/logger"
	"context"
	"log"
	"os"
)

func main() {
	logger.FromContext(context.Background()).Infow("starting api", "commitHash", os.Getenv("commit_hash"))
	deps, err := cmd.InitializeDependencies()
	if err != nil {
		log.Fatal(err)
	}
	defer cmd.CloseDependencies(deps)

	err = deps.ApiHandler.StartApi(deps.Config.Api.Port)
	if err != nil {
		log.Fatal(err)
	}
}
