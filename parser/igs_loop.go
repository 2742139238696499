// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/igs_loop.go
// Summary: IGS loop command (G#&) expansion.
// Notes: A loop replays a drawing command with parameters recomputed
//        per iteration: the loop counter, its mirror, offsets from the
//        counter, countdowns, and random values within configured
//        bounds.

package parser

import (
	"math/rand"
	"strconv"
	"strings"
)

// IgsParamKind tags how a loop parameter is evaluated per iteration.
type IgsParamKind int

const (
	IgsParamValue     IgsParamKind = iota // constant N
	IgsParamStepX                         // "x": the loop counter
	IgsParamStepY                         // "y": to + from - counter
	IgsParamAdd                           // "+N": counter + N
	IgsParamSub                           // "-N": counter - N
	IgsParamCountdown                     // "!N": N - iteration index
	IgsParamRandom                        // "r": random within the small range
	IgsParamRandomBig                     // "R": random within the big range
	IgsParamGroupSep                      // ":" between chain gang groups
)

// IgsParameter is one unevaluated loop parameter.
type IgsParameter struct {
	Kind IgsParamKind
	N    int
}

// ParameterBounds holds the ranges for random loop parameters.
// G#X>2 reconfigures them at runtime.
type ParameterBounds struct {
	Min, Max       int
	BigMin, BigMax int
}

// DefaultParameterBounds returns the power-on random ranges.
func DefaultParameterBounds() ParameterBounds {
	return ParameterBounds{Min: 0, Max: 199, BigMin: 0, BigMax: 199}
}

func randWithin(rng *rand.Rand, min, max int) int {
	if max <= min {
		return min
	}
	return min + rng.Intn(max-min+1)
}

// Evaluate resolves the parameter for one loop iteration. counter is
// the current loop value, iteration counts from zero.
func (p IgsParameter) Evaluate(counter, from, to, iteration int, bounds ParameterBounds, rng *rand.Rand) int {
	switch p.Kind {
	case IgsParamStepX:
		return counter
	case IgsParamStepY:
		return to + from - counter
	case IgsParamAdd:
		return counter + p.N
	case IgsParamSub:
		return counter - p.N
	case IgsParamCountdown:
		return p.N - iteration
	case IgsParamRandom:
		return randWithin(rng, bounds.Min, bounds.Max)
	case IgsParamRandomBig:
		return randWithin(rng, bounds.BigMin, bounds.BigMax)
	default:
		return p.N
	}
}

// IgsLoop is the payload of an IgsLoopOp command.
//
// A chain gang loop (">CL@" identifier form) replays several commands
// per iteration; Targets then holds one letter per command and Params
// is split on group separators, one group per target.
type IgsLoop struct {
	From, To, Step int
	Delay          int
	Targets        []byte
	Params         []IgsParameter

	// Identifier modifiers.
	XorStepping bool // "|": alternate x and y stepping per parameter
	RefreshText bool // "@": re-send text parameters each iteration

	Text string // text payload for W targets
}

// Iterations returns the loop values in execution order. A step in the
// wrong direction for the range is negated; a zero step yields no
// iterations.
func (l *IgsLoop) Iterations() []int {
	step := l.Step
	if step == 0 {
		return nil
	}
	if l.From > l.To && step > 0 {
		step = -step
	}
	if l.From < l.To && step < 0 {
		step = -step
	}
	var out []int
	if step > 0 {
		for v := l.From; v <= l.To; v += step {
			out = append(out, v)
		}
	} else {
		for v := l.From; v >= l.To; v += step {
			out = append(out, v)
		}
	}
	return out
}

// paramGroups splits Params on group separators, one group per target
// command.
func (l *IgsLoop) paramGroups() [][]IgsParameter {
	var groups [][]IgsParameter
	start := 0
	for i, p := range l.Params {
		if p.Kind == IgsParamGroupSep {
			groups = append(groups, l.Params[start:i])
			start = i + 1
		}
	}
	groups = append(groups, l.Params[start:])
	return groups
}

// Loop token parsing. The wire form is
//
//	G#&>from,to,step,delay,ident,paramCount,params...:
//
// where ident is a command letter with optional '|' and '@' modifiers,
// or ">letters@" replaying several commands per iteration. Parameters
// may be constants or the placeholders evaluated in Evaluate.

func (p *IgsParser) pushLoopToken(force bool) {
	if len(p.loopBuf) == 0 && !force {
		return
	}
	p.loopTokens = append(p.loopTokens, string(p.loopBuf))
	p.loopBuf = p.loopBuf[:0]
}

// loopParamsComplete reports whether enough parameter tokens have been
// collected to satisfy the declared parameter count.
func (p *IgsParser) loopParamsComplete() bool {
	if len(p.loopTokens) < 6 {
		return false
	}
	want, err := strconv.Atoi(p.loopTokens[5])
	if err != nil {
		return true
	}
	have := 0
	for _, tok := range p.loopTokens[6:] {
		if tok != ":" {
			have++
		}
	}
	return have >= want
}

func (p *IgsParser) parseLoopByte(b byte, sink CommandSink) {
	if p.inChainGang {
		p.loopBuf = append(p.loopBuf, b)
		if b == '@' {
			p.inChainGang = false
		}
		return
	}
	switch b {
	case ' ', '\r', '_':
		// Formatting.
	case '>':
		// At the identifier position this opens a chain gang; anywhere
		// else it is formatting.
		if len(p.loopTokens) == 4 && len(p.loopBuf) == 0 {
			p.inChainGang = true
			p.loopBuf = append(p.loopBuf, b)
		}
	case ',':
		// A comma directly after a group separator is only a delimiter;
		// force-pushing there would inject an empty parameter token.
		if len(p.loopBuf) == 0 && len(p.loopTokens) > 0 &&
			p.loopTokens[len(p.loopTokens)-1] == ":" {
			break
		}
		p.pushLoopToken(true)
	case ':':
		p.pushLoopToken(false)
		if p.loopParamsComplete() {
			p.emitLoop(sink)
			p.resetCommand()
			p.state = igsGotIgsStart
		} else {
			p.loopTokens = append(p.loopTokens, ":")
		}
	case '\n':
		p.pushLoopToken(false)
		p.emitLoop(sink)
		p.resetCommand()
		p.state = igsDefault
	case ')':
		p.loopBuf = append(p.loopBuf, b)
		p.pushLoopToken(false)
	default:
		p.loopBuf = append(p.loopBuf, b)
	}
}

func (p *IgsParser) emitLoop(sink CommandSink) {
	if len(p.loopTokens) < 6 {
		sink.ReportError(malformedSequence("incomplete IGS loop",
			strings.Join(p.loopTokens, ","), "G#&"), LevelWarning)
		return
	}
	atoi := func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	}
	loop := &IgsLoop{
		From:  atoi(p.loopTokens[0]),
		To:    atoi(p.loopTokens[1]),
		Step:  atoi(p.loopTokens[2]),
		Delay: atoi(p.loopTokens[3]),
	}
	ident := p.loopTokens[4]
	if strings.HasPrefix(ident, ">") {
		inner := strings.TrimSuffix(strings.TrimPrefix(ident, ">"), "@")
		loop.Targets = []byte(inner)
	} else if ident != "" {
		loop.Targets = []byte{ident[0]}
		for _, c := range ident[1:] {
			switch c {
			case '|':
				loop.XorStepping = true
			case '@':
				loop.RefreshText = true
			}
		}
	}
	for _, tok := range p.loopTokens[6:] {
		loop.Params = append(loop.Params, igsLoopParam(tok))
	}
	sink.EmitIgs(IgsCommand{Op: IgsLoopOp, Loop: loop})
}

func igsLoopParam(tok string) IgsParameter {
	switch {
	case tok == ":":
		return IgsParameter{Kind: IgsParamGroupSep}
	case tok == "x" || tok == "X":
		return IgsParameter{Kind: IgsParamStepX}
	case tok == "y" || tok == "Y":
		return IgsParameter{Kind: IgsParamStepY}
	case tok == "r":
		return IgsParameter{Kind: IgsParamRandom}
	case tok == "R":
		return IgsParameter{Kind: IgsParamRandomBig}
	case strings.HasPrefix(tok, "+"):
		n, _ := strconv.Atoi(tok[1:])
		return IgsParameter{Kind: IgsParamAdd, N: n}
	case strings.HasPrefix(tok, "-"):
		n, _ := strconv.Atoi(tok[1:])
		return IgsParameter{Kind: IgsParamSub, N: n}
	case strings.HasPrefix(tok, "!"):
		n, _ := strconv.Atoi(tok[1:])
		return IgsParameter{Kind: IgsParamCountdown, N: n}
	default:
		n, _ := strconv.Atoi(tok)
		return IgsParameter{Kind: IgsParamValue, N: n}
	}
}

// Run expands the loop, emitting one command per target per iteration.
func (l *IgsLoop) Run(sink CommandSink, bounds ParameterBounds, rng *rand.Rand) {
	targets := l.Targets
	if len(targets) == 0 {
		return
	}
	groups := l.paramGroups()
	for i, v := range l.Iterations() {
		for t, letter := range targets {
			group := groups[t%len(groups)]
			args := make([]int, len(group))
			for j, p := range group {
				args[j] = p.Evaluate(v, l.From, l.To, i, bounds, rng)
			}
			if cmd, ok := igsCommandFromLetter(letter, args, l.Text); ok {
				sink.EmitIgs(cmd)
			} else {
				sink.ReportError(invalidParameter("IGS loop", string(letter),
					"a drawing command with matching parameters"), LevelWarning)
				return
			}
		}
	}
}
