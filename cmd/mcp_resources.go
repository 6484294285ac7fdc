/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/josephgoksu/tasklane/internal/task"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const tasksResourceURI = "tasklane://tasks"

func registerMCPResources(server *mcp.Server, repo *task.Repository) {
	server.AddResource(&mcp.Resource{
		URI:         tasksResourceURI,
		Name:        "tasks",
		Description: "The live task collection in JSON format",
		MIMEType:    "application/json",
	}, tasksResourceHandler(repo))
}

// tasksResourceHandler provides access to all tasks in JSON format
func tasksResourceHandler(repo *task.Repository) mcp.ResourceHandler {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.ReadResourceParams) (*mcp.ReadResourceResult, error) {
		tasks, err := repo.GetAll()
		if err != nil {
			return nil, fmt.Errorf("failed to list tasks: %w", err)
		}

		jsonData, err := json.MarshalIndent(tasksToResponse(tasks), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal tasks to JSON: %w", err)
		}

		logInfo("provided tasks resource", "count", len(tasks))
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      params.URI,
					MIMEType: "application/json",
					Text:     string(jsonData),
				},
			},
		}, nil
	}
}
