package lexer

import "testing"

func TestStreamPeekDoesNotAdvance(t *testing.T) {
	s := NewStream("int x;")
	if s.Peek().Kind != KwInt {
		t.Fatalf("peek = %v, want KwInt", s.Peek().Kind)
	}
	if s.Peek().Kind != KwInt {
		t.Fatal("repeated peek must not advance the stream")
	}
}

func TestStreamPeekNLookaheadTwo(t *testing.T) {
	s := NewStream("int * x;")
	if s.PeekN(0).Kind != KwInt {
		t.Fatalf("peekn(0) = %v, want KwInt", s.PeekN(0).Kind)
	}
	if s.PeekN(1).Kind != Star {
		t.Fatalf("peekn(1) = %v, want Star", s.PeekN(1).Kind)
	}
	if s.PeekN(2).Kind != Ident {
		t.Fatalf("peekn(2) = %v, want Ident", s.PeekN(2).Kind)
	}
	// Peeking ahead must not consume: Next() still starts from the front.
	if s.Next().Kind != KwInt {
		t.Fatal("next() after peekn should still return the first token")
	}
}

func TestStreamNextAdvances(t *testing.T) {
	s := NewStream("a b c")
	for _, want := range []string{"a", "b", "c"} {
		tok := s.Next()
		if tok.Value != want {
			t.Fatalf("next() = %q, want %q", tok.Value, want)
		}
	}
	if s.Next().Kind != EOF {
		t.Fatal("expected EOF after exhausting the stream")
	}
}

func TestStreamConsumeMatchesAndAdvances(t *testing.T) {
	s := NewStream("int x;")
	if _, ok := s.Consume(KwChar); ok {
		t.Fatal("consume should fail on a non-matching kind")
	}
	if _, ok := s.Consume(KwInt); !ok {
		t.Fatal("consume should succeed on a matching kind")
	}
	if !s.At(Ident) {
		t.Fatal("stream should have advanced past the consumed token")
	}
}

func TestStreamPeekPastEOFIsStable(t *testing.T) {
	s := NewStream("x")
	s.Next()
	if s.PeekN(5).Kind != EOF {
		t.Fatalf("peekn past EOF = %v, want EOF", s.PeekN(5).Kind)
	}
	if s.Next().Kind != EOF {
		t.Fatal("next() past EOF should keep returning EOF")
	}
}
