/*
Package topicflow is the core of an instrument communication diagram editor.

A project describes how one instrument (identified by its type and revision) talks
to the outside world: a set of topics, each a small state machine whose transitions
carry a message type and a flow type. The validation engine inspects a project
snapshot and reports issues; it never mutates, persists or renders anything.

# Concept

Validation is pure and synchronous. Every rule of the built-in rule set runs once per
call and findings are returned as data:

  - Errors block saving.
  - Warnings are advisory.

Persistence, diagram rendering and the HTTP/MCP surfaces are adapters around the
engine (hexagonal architecture), so the same rules back the CLI, the HTTP server and
AI agents.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/topicflow"
		"github.com/aretw0/topicflow/pkg/adapters/memory"
		"github.com/aretw0/topicflow/pkg/editor"
	)

	func main() {
		ed := topicflow.New(memory.NewStore())

		ctx := context.Background()
		project, err := ed.Projects.Create(ctx, editor.CreateProjectInput{Type: "Pump", Revision: "R1"})
		if err != nil {
			log.Fatal(err)
		}

		for _, issue := range ed.Projects.Check(project) {
			fmt.Println(issue.Level, issue.Message)
		}
	}
*/
package topicflow
