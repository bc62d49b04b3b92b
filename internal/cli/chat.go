// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/mikilabs/miki-tui/internal/config"
	"github.com/mikilabs/miki-tui/internal/model"
	"github.com/mikilabs/miki-tui/internal/session"
	"github.com/mikilabs/miki-tui/internal/socket"
	"github.com/mikilabs/miki-tui/internal/storage"
)

// =============================================================================
// CHAT REPL
// =============================================================================

// HandleChat runs the line-based chat REPL over the same session controller
// the TUI uses. Replies stream to stdout character by character.
func HandleChat(args Args) {
	cfg := loadConfig(args)

	persona, err := ResolvePersona(args.Persona)
	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}

	endpoint := cfg.Server.ChatURL
	if args.Endpoint != "" {
		endpoint = args.Endpoint
	}

	repl := newChatREPL(cfg, persona, endpoint, cfg.Chat.GreetOnOpen && !args.NoGreeting)
	if err := repl.run(); err != nil {
		printError(err.Error())
		os.Exit(1)
	}
}

// chatREPL drives one REPL session.
type chatREPL struct {
	cfg     *config.Config
	ctrl    *session.Controller
	persona model.Persona

	// printed tracks how much of the current reveal is already on screen,
	// so each tick prints only the new suffix.
	printed int

	turnDone chan struct{}
	errored  chan error
}

func newChatREPL(cfg *config.Config, persona model.Persona, endpoint string, greet bool) *chatREPL {
	r := &chatREPL{
		cfg:      cfg,
		persona:  persona,
		turnDone: make(chan struct{}, 1),
		errored:  make(chan error, 4),
	}

	r.ctrl = session.New(session.Config{
		Endpoint:       endpoint,
		Persona:        persona,
		RevealInterval: cfg.Chat.RevealInterval(),
		SeedGreeting:   greet,
		SendBurst:      cfg.Chat.SendBurst,
		Handlers: session.Handlers{
			OnPartial: r.onPartial,
			OnTranscriptChange: func() {
				if sender, ok := r.ctrl.Transcript().LastSender(); ok && sender == model.SenderAssistant {
					select {
					case r.turnDone <- struct{}{}:
					default:
					}
				}
			},
			OnSendFailed: func(err error) { r.errored <- err },
			OnError:      func(err error) { r.errored <- err },
		},
	})
	return r
}

// onPartial prints the growing reveal prefix as a typewriter stream.
func (r *chatREPL) onPartial(partial string) {
	if partial == "" {
		r.printed = 0
		return
	}
	if len(partial) > r.printed {
		fmt.Print(partial[r.printed:])
		r.printed = len(partial)
	}
}

func (r *chatREPL) run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	err := r.ctrl.OpenSession(ctx)
	cancel()
	if err != nil {
		return fmt.Errorf("could not connect: %w", err)
	}
	defer r.ctrl.Teardown()

	name := r.persona.Name
	if name == "" {
		name = model.DefaultAssistantName
	}
	printInfo("Chatting with " + name + ". Type /help for commands, /quit to leave.")
	if greeting, ok := r.ctrl.Transcript().LastMessage(); ok {
		fmt.Println(name + ": " + greeting.Text)
	}

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer line.Close()

	for {
		input, err := line.Prompt("you> ")
		if errors.Is(err, liner.ErrPromptAborted) {
			return nil
		}
		if err != nil {
			// EOF ends the session cleanly.
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if quit := r.command(input); quit {
				return nil
			}
			continue
		}

		if err := r.sendAndWait(input, name); err != nil {
			return err
		}
	}
}

// sendAndWait sends one message and blocks until the reply is committed,
// the transport fails, or the turn times out.
func (r *chatREPL) sendAndWait(text, name string) error {
	if err := r.ctrl.Send(text); err != nil {
		if socket.IsNotConnected(err) {
			return errors.New("connection lost; start a new chat to reconnect")
		}
		printError(err.Error())
		return nil
	}

	fmt.Print(name + ": ")
	select {
	case <-r.turnDone:
		fmt.Println()
		return nil
	case err := <-r.errored:
		fmt.Println()
		if socket.IsSendFailed(err) {
			printError("Message not delivered: " + err.Error())
			return nil
		}
		return fmt.Errorf("connection lost: %w", err)
	case <-time.After(2 * time.Minute):
		fmt.Println()
		printError("Timed out waiting for a reply.")
		return nil
	}
}

// command handles slash commands; true means quit.
func (r *chatREPL) command(input string) bool {
	switch strings.Fields(input)[0] {
	case "/quit", "/exit", "/q":
		return true
	case "/save":
		r.save()
	case "/personas":
		for _, p := range model.BuiltinPersonas() {
			fmt.Println("  " + p.Name)
		}
	case "/help":
		printMuted("  /save      save this conversation to the library")
		printMuted("  /personas  list built-in personas")
		printMuted("  /quit      leave the chat")
	default:
		printError("Unknown command. Try /help.")
	}
	return false
}

func (r *chatREPL) save() {
	lib, err := storage.OpenDefault()
	if err != nil {
		printError("Could not open the library: " + err.Error())
		return
	}
	defer lib.Close()

	id, err := lib.Save(&storage.Conversation{
		Persona:  r.persona.Name,
		Messages: r.ctrl.Transcript().All(),
	})
	if err != nil {
		printError("Save failed: " + err.Error())
		return
	}
	printSuccess("Saved conversation " + id)
}

// =============================================================================
// PERSONA RESOLUTION
// =============================================================================

// ResolvePersona matches a case-insensitive name prefix against the built-in
// personas. Empty input selects the plain assistant.
func ResolvePersona(name string) (model.Persona, error) {
	if name == "" {
		return model.Persona{}, nil
	}
	lowered := strings.ToLower(name)
	for _, p := range model.BuiltinPersonas() {
		if strings.HasPrefix(strings.ToLower(p.Name), lowered) {
			return p, nil
		}
	}
	return model.Persona{}, fmt.Errorf("unknown persona %q; run 'miki chat --persona' with one of the names from /personas", name)
}

// loadConfig loads the config file, honoring the --config override.
func loadConfig(args Args) *config.Config {
	if args.ConfigPath != "" {
		cfg, err := config.LoadFromPath(args.ConfigPath)
		if err != nil {
			printError("Config error: " + err.Error())
			os.Exit(1)
		}
		return cfg
	}
	return config.Global()
}
