package parser

// Attempt is the outcome of running one alternative on a fork.
type Attempt[T any] struct {
	Value  T
	Err    error
	Cursor Cursor
}

func (a Attempt[T]) Ok() bool { return a.Err == nil }

// TryParse runs rule on a fork of c. c itself never moves.
func TryParse[T any](c *Cursor, rule func(*Cursor) (T, error)) Attempt[T] {
	fork := c.Fork()
	v, err := rule(&fork)
	return Attempt[T]{Value: v, Err: err, Cursor: fork}
}

// RequireUnambiguous commits the single successful attempt. With no
// success the error is ExpectedToken(expected) at the common starting
// point, whatever the attempts reported. Two or more successes panic with
// *GrammarAmbiguity.
func RequireUnambiguous[T any](c *Cursor, expected string, attempts ...Attempt[T]) (T, error) {
	var zero T

	start := c.Fork()
	start.SkipTrivia()

	winner := -1
	matches := 0
	for i := range attempts {
		if attempts[i].Ok() {
			matches++
			winner = i
		}
	}

	switch {
	case matches == 1:
		c.Commit(attempts[winner].Cursor)
		c.point("commit", expected)
		return attempts[winner].Value, nil

	case matches > 1:
		panic(&GrammarAmbiguity{Expected: expected, Matches: matches, At: start.here()})
	}

	return zero, &Error{Kind: ExpectedToken, Token: expected, At: start.here()}
}

// Delimited parses open, body, close.
func Delimited[T any](c *Cursor, open, close rune, body func(*Cursor) (T, error)) (T, error) {
	var zero T
	if err := c.Expect(open); err != nil {
		return zero, err
	}
	v, err := body(c)
	if err != nil {
		return zero, err
	}
	if err := c.Expect(close); err != nil {
		return zero, err
	}
	return v, nil
}

// ParseComma parses items separated by commas up to, but not including,
// close. A single trailing comma is accepted. The input must not run out
// before close is seen.
func ParseComma[T any](c *Cursor, close rune, item func(*Cursor) (T, error)) ([]T, error) {
	var items []T
	for {
		c.SkipTrivia()
		next, ok := c.Peek()
		if !ok {
			return nil, &Error{Kind: UnexpectedEndOfInput, At: c.here()}
		}
		if next == close {
			break
		}

		v, err := item(c)
		if err != nil {
			return nil, err
		}
		items = append(items, v)

		c.SkipTrivia()
		if next, ok := c.Peek(); ok && next == close {
			break
		}
		if err := c.Expect(','); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// ListOf lifts an item rule to a bracketed list rule.
func ListOf[T any](item func(*Cursor) (T, error)) func(*Cursor) ([]T, error) {
	return func(c *Cursor) ([]T, error) {
		return Delimited(c, '[', ']', func(c *Cursor) ([]T, error) {
			return ParseComma(c, ']', item)
		})
	}
}
