// Package storetest provides a scripted KeyValueStore for tests.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"shorty/internal/store"
)

// Method names a KeyValueStore method
type Method string

const (
	GetString Method = "GetString"
	GetBool   Method = "GetBool"
	Exists    Method = "Exists"
	Increment Method = "Increment"
	Expire    Method = "Expire"
	Set       Method = "Set"
)

// AnyKey matches every key
const AnyKey = "\x00any"

// Call is one expected store call and its canned answer
type Call struct {
	Method Method
	Key    string

	// Value is checked for Set unless empty
	Value string
	// TTL is checked for Expire unless zero
	TTL time.Duration

	String string
	Bool   bool
	Int    int64
	Err    error
}

// ScriptedStore replays expected calls in order. Any call that does not
// match the next expectation, or arrives once the script is exhausted,
// fails the test.
type ScriptedStore struct {
	t     testing.TB
	mu    sync.Mutex
	calls []Call
	next  int
	seen  []Call
}

var _ store.KeyValueStore = (*ScriptedStore)(nil)

// New creates a scripted store and registers a cleanup that fails the
// test if expectations are left over
func New(t testing.TB, calls ...Call) *ScriptedStore {
	s := &ScriptedStore{t: t, calls: calls}
	t.Cleanup(s.AssertDone)
	return s
}

// Expect appends further expectations
func (s *ScriptedStore) Expect(calls ...Call) *ScriptedStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, calls...)
	return s
}

// Seen returns the calls received so far
func (s *ScriptedStore) Seen() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.seen...)
}

// AssertDone fails the test if expectations were not consumed
func (s *ScriptedStore) AssertDone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next < len(s.calls) {
		s.t.Errorf("storetest: %d expected call(s) not made, next is %s(%q)",
			len(s.calls)-s.next, s.calls[s.next].Method, s.calls[s.next].Key)
	}
}

func (s *ScriptedStore) take(got Call) Call {
	s.t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seen = append(s.seen, got)

	if s.next >= len(s.calls) {
		s.t.Fatalf("storetest: unexpected call %s(%q), script exhausted", got.Method, got.Key)
	}

	want := s.calls[s.next]
	s.next++

	if err := match(want, got); err != nil {
		s.t.Fatalf("storetest: call #%d: %v", s.next, err)
	}
	return want
}

func match(want, got Call) error {
	if want.Method != got.Method {
		return fmt.Errorf("expected %s(%q), got %s(%q)", want.Method, want.Key, got.Method, got.Key)
	}
	if want.Key != AnyKey && want.Key != got.Key {
		return fmt.Errorf("%s: expected key %q, got %q", got.Method, want.Key, got.Key)
	}
	if want.Value != "" && want.Value != got.Value {
		return fmt.Errorf("%s(%q): expected value %q, got %q", got.Method, got.Key, want.Value, got.Value)
	}
	if want.TTL != 0 && want.TTL != got.TTL {
		return fmt.Errorf("%s(%q): expected ttl %s, got %s", got.Method, got.Key, want.TTL, got.TTL)
	}
	return nil
}

func (s *ScriptedStore) GetString(_ context.Context, key string) (string, error) {
	c := s.take(Call{Method: GetString, Key: key})
	return c.String, c.Err
}

func (s *ScriptedStore) GetBool(_ context.Context, key string) (bool, error) {
	c := s.take(Call{Method: GetBool, Key: key})
	return c.Bool, c.Err
}

func (s *ScriptedStore) Exists(_ context.Context, key string) (bool, error) {
	c := s.take(Call{Method: Exists, Key: key})
	return c.Bool, c.Err
}

func (s *ScriptedStore) Increment(_ context.Context, key string) (int64, error) {
	c := s.take(Call{Method: Increment, Key: key})
	return c.Int, c.Err
}

func (s *ScriptedStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	c := s.take(Call{Method: Expire, Key: key, TTL: ttl})
	return c.Err
}

func (s *ScriptedStore) Set(_ context.Context, key string, value string) error {
	c := s.take(Call{Method: Set, Key: key, Value: value})
	return c.Err
}
