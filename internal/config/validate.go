package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the whole configuration and reports every problem found.
func (c *Config) Validate() error {
	if c.Version == "" {
		c.Version = VersionLatest
	}
	if c.Version != VersionLatest {
		return fmt.Errorf("%w: %s", ErrUnsupportedConfigVer, c.Version)
	}

	errz := []error{}

	if !c.Logging.Level.IsValid() {
		errz = append(errz, fmt.Errorf("%w: log level %q", ErrInvalidValue, c.Logging.Level))
	}
	if !c.Logging.Format.IsValid() {
		errz = append(errz, fmt.Errorf("%w: log format %q", ErrInvalidValue, c.Logging.Format))
	}

	listenerIDs := make(map[string]bool, len(c.Listeners))
	listenerAddrs := make(map[string]bool, len(c.Listeners))
	for i, l := range c.Listeners {
		if l.ID == "" {
			errz = append(errz, fmt.Errorf("listener at index %d: %w", i, ErrEmptyID))
			continue
		}
		if listenerIDs[l.ID] {
			errz = append(errz, fmt.Errorf("listener %q: %w", l.ID, ErrDuplicateID))
		}
		listenerIDs[l.ID] = true

		if l.Address == "" {
			errz = append(errz, fmt.Errorf("listener %q: %w: address", l.ID, ErrMissingField))
			continue
		}
		if listenerAddrs[l.Address] {
			errz = append(errz, fmt.Errorf("listener %q: %w: duplicate address %s", l.ID, ErrInvalidValue, l.Address))
		}
		listenerAddrs[l.Address] = true
	}

	collaboratorIDs := make(map[string]bool, len(c.Collaborators))
	for i, col := range c.Collaborators {
		if col.ID == "" {
			errz = append(errz, fmt.Errorf("collaborator at index %d: %w", i, ErrEmptyID))
			continue
		}
		if collaboratorIDs[col.ID] {
			errz = append(errz, fmt.Errorf("collaborator %q: %w", col.ID, ErrDuplicateID))
		}
		collaboratorIDs[col.ID] = true

		if err := col.Validate(); err != nil {
			errz = append(errz, fmt.Errorf("collaborator %q: %w", col.ID, err))
		}
	}

	serverKeys := make(map[string]bool, len(c.Servers))
	routes := make(map[string]string)
	commands := make(map[string]string)
	for i := range c.Servers {
		s := &c.Servers[i]
		if s.Key == "" {
			errz = append(errz, fmt.Errorf("server at index %d: %w", i, ErrEmptyID))
			continue
		}
		if serverKeys[s.Key] {
			errz = append(errz, fmt.Errorf("server %q: %w", s.Key, ErrDuplicateID))
		}
		serverKeys[s.Key] = true

		if err := s.Validate(); err != nil {
			errz = append(errz, fmt.Errorf("server %q: %w", s.Key, err))
		}

		if !s.IsEnabled() {
			continue
		}

		if s.HTTP != nil {
			listenerID := s.HTTP.ListenerID()
			if !listenerIDs[listenerID] {
				errz = append(errz, fmt.Errorf("server %q: %w: %s", s.Key, ErrUnknownListener, listenerID))
			}
			routeKey := listenerID + " " + s.HTTP.RoutePath()
			if other, taken := routes[routeKey]; taken {
				errz = append(errz, fmt.Errorf("server %q: %w: %s already used by %q", s.Key, ErrDuplicateRoute, routeKey, other))
			}
			routes[routeKey] = s.Key
		}

		if s.Stdio != nil {
			name := s.Stdio.CommandName()
			if other, taken := commands[name]; taken {
				errz = append(errz, fmt.Errorf("server %q: %w: %s already used by %q", s.Key, ErrDuplicateCommand, name, other))
			}
			commands[name] = s.Key
		}
	}

	return errors.Join(errz...)
}

// Validate checks a single server entry in isolation.
func (s *Server) Validate() error {
	errz := []error{}

	if s.PaginationLimit != nil && *s.PaginationLimit < 0 {
		errz = append(errz, fmt.Errorf("%w: pagination_limit must not be negative", ErrInvalidValue))
	}
	if s.Session != nil && s.Session.TTL != nil && *s.Session.TTL <= 0 {
		errz = append(errz, fmt.Errorf("%w: session ttl must be positive", ErrInvalidValue))
	}
	if s.HTTP != nil && s.HTTP.Path != "" && !strings.HasPrefix(s.HTTP.Path, "/") {
		errz = append(errz, fmt.Errorf("%w: http path %q must start with /", ErrInvalidValue, s.HTTP.Path))
	}

	for i, t := range s.Tools {
		if t.Name == "" {
			errz = append(errz, fmt.Errorf("tool at index %d: %w: name", i, ErrMissingField))
		}
		if t.Handler == "" {
			errz = append(errz, fmt.Errorf("tool %q: %w: handler", t.Name, ErrMissingField))
		}
	}
	for i, r := range s.Resources {
		if r.URI == "" {
			errz = append(errz, fmt.Errorf("resource at index %d: %w: uri", i, ErrMissingField))
		}
		if r.Handler == "" {
			errz = append(errz, fmt.Errorf("resource %q: %w: handler", r.URI, ErrMissingField))
		}
	}
	for i, rt := range s.ResourceTemplates {
		if rt.URITemplate == "" {
			errz = append(errz, fmt.Errorf("resource template at index %d: %w: uri_template", i, ErrMissingField))
		}
		if rt.Handler == "" {
			errz = append(errz, fmt.Errorf("resource template %q: %w: handler", rt.URITemplate, ErrMissingField))
		}
	}
	for i, p := range s.Prompts {
		if p.Name == "" {
			errz = append(errz, fmt.Errorf("prompt at index %d: %w: name", i, ErrMissingField))
		}
		if p.Handler == "" {
			errz = append(errz, fmt.Errorf("prompt %q: %w: handler", p.Name, ErrMissingField))
		}
	}

	return errors.Join(errz...)
}
