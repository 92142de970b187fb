package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
)

// interactivePrompter is what the setup flow needs from a prompt
// implementation; the plain prompter covers confirmation prompts and
// tests, huhPrompter drives the interactive setup.
type interactivePrompter interface {
	required(prompt string) (string, error)
	optional(prompt string) (string, error)
	requiredSecret(prompt string) (string, error)
	choice(label string, options []string, defaultValue string, normalize func(string) (string, bool)) (string, error)
	confirm(prompt string, defaultValue bool) (bool, error)
	sectionHeader(title, subtitle string)
}

type huhPrompter struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newHuhPrompter(stdin io.Reader, stdout, stderr io.Writer) interactivePrompter {
	return &huhPrompter{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}
}

func (h *huhPrompter) runField(field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).
		WithShowHelp(false).
		WithInput(h.stdin).
		WithOutput(h.stdout)
	return form.Run()
}

func (h *huhPrompter) readLine(prompt string) (string, error) {
	var value string
	field := huh.NewInput().
		Title(prompt).
		Prompt("> ").
		Value(&value)
	if err := h.runField(field); err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func (h *huhPrompter) required(prompt string) (string, error) {
	var value string
	field := huh.NewInput().
		Title(prompt).
		Prompt("> ").
		Value(&value).
		Validate(func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("input required")
			}
			return nil
		})
	if err := h.runField(field); err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func (h *huhPrompter) optional(prompt string) (string, error) {
	return h.readLine(prompt)
}

func (h *huhPrompter) requiredSecret(prompt string) (string, error) {
	var value string
	field := huh.NewInput().
		Title(prompt).
		Prompt("> ").
		Value(&value).
		EchoMode(huh.EchoModePassword).
		Validate(func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("input required")
			}
			return nil
		})
	if err := h.runField(field); err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func (h *huhPrompter) choice(label string, options []string, defaultValue string, normalize func(string) (string, bool)) (string, error) {
	selection := strings.TrimSpace(defaultValue)

	opts := make([]huh.Option[string], 0, len(options))
	for _, option := range options {
		opts = append(opts, huh.NewOption(option, option))
	}

	field := huh.NewSelect[string]().
		Title(label).
		Options(opts...).
		Value(&selection)
	if err := h.runField(field); err != nil {
		return "", err
	}

	normalized, ok := normalize(selection)
	if !ok {
		return "", fmt.Errorf("invalid choice: %s", selection)
	}
	return normalized, nil
}

func (h *huhPrompter) confirm(prompt string, defaultValue bool) (bool, error) {
	value := defaultValue
	field := huh.NewConfirm().
		Title(prompt).
		Value(&value)
	if err := h.runField(field); err != nil {
		return false, err
	}
	return value, nil
}

func (h *huhPrompter) sectionHeader(title, subtitle string) {
	fmt.Fprintf(h.stdout, "\n%s\n%s\n", title, strings.Repeat("-", len(title)))
	if subtitle != "" {
		fmt.Fprintln(h.stdout, subtitle)
	}
}
