// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/igs_loop_test.go
// Summary: IGS loop expansion tests.

package parser

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestIgsLoopIterations(t *testing.T) {
	cases := []struct {
		from, to, step int
		want           []int
	}{
		{0, 4, 2, []int{0, 2, 4}},
		{0, 5, 2, []int{0, 2, 4}},
		// A step pointing away from the range is negated.
		{10, 5, 2, []int{10, 8, 6}},
		{5, 10, -2, []int{5, 7, 9}},
		{3, 3, 1, []int{3}},
		{0, 10, 0, nil},
	}
	for _, tc := range cases {
		l := &IgsLoop{From: tc.from, To: tc.to, Step: tc.step}
		if got := l.Iterations(); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Iterations(%d,%d,%d) = %v, want %v", tc.from, tc.to, tc.step, got, tc.want)
		}
	}
}

func TestIgsLoopWireParsing(t *testing.T) {
	sink := parseAll(NewIgsParser(), []byte("G#&>0,100,10,0,L,4,x,0,x,199:"))
	if len(sink.igs) != 1 || sink.igs[0].Op != IgsLoopOp {
		t.Fatalf("igs = %+v, want one loop", sink.igs)
	}
	l := sink.igs[0].Loop
	if l.From != 0 || l.To != 100 || l.Step != 10 || l.Delay != 0 {
		t.Fatalf("loop header = %+v", l)
	}
	if !reflect.DeepEqual(l.Targets, []byte{'L'}) {
		t.Fatalf("targets = %q", l.Targets)
	}
	wantParams := []IgsParameter{
		{Kind: IgsParamStepX},
		{Kind: IgsParamValue, N: 0},
		{Kind: IgsParamStepX},
		{Kind: IgsParamValue, N: 199},
	}
	if !reflect.DeepEqual(l.Params, wantParams) {
		t.Fatalf("params = %+v, want %+v", l.Params, wantParams)
	}
}

func TestIgsLoopRunStepMirror(t *testing.T) {
	l := &IgsLoop{
		From: 0, To: 20, Step: 10,
		Targets: []byte{'P'},
		Params:  []IgsParameter{{Kind: IgsParamStepX}, {Kind: IgsParamStepY}},
	}
	sink := &recordSink{}
	l.Run(sink, DefaultParameterBounds(), rand.New(rand.NewSource(1)))
	want := []IgsCommand{
		{Op: IgsPolymarkerPlot, Args: []int{0, 20}},
		{Op: IgsPolymarkerPlot, Args: []int{10, 10}},
		{Op: IgsPolymarkerPlot, Args: []int{20, 0}},
	}
	if !reflect.DeepEqual(sink.igs, want) {
		t.Fatalf("igs = %+v, want %+v", sink.igs, want)
	}
}

func TestIgsLoopRunOffsetsAndCountdown(t *testing.T) {
	l := &IgsLoop{
		From: 0, To: 2, Step: 1,
		Targets: []byte{'L'},
		Params: []IgsParameter{
			{Kind: IgsParamStepX},
			{Kind: IgsParamAdd, N: 5},
			{Kind: IgsParamSub, N: 2},
			{Kind: IgsParamCountdown, N: 100},
		},
	}
	sink := &recordSink{}
	l.Run(sink, DefaultParameterBounds(), rand.New(rand.NewSource(1)))
	want := []IgsCommand{
		{Op: IgsLine, Args: []int{0, 5, -2, 100}},
		{Op: IgsLine, Args: []int{1, 6, -1, 99}},
		{Op: IgsLine, Args: []int{2, 7, 0, 98}},
	}
	if !reflect.DeepEqual(sink.igs, want) {
		t.Fatalf("igs = %+v, want %+v", sink.igs, want)
	}
}

func TestIgsLoopRunRandomWithinBounds(t *testing.T) {
	l := &IgsLoop{
		From: 0, To: 9, Step: 1,
		Targets: []byte{'P'},
		Params:  []IgsParameter{{Kind: IgsParamRandom}, {Kind: IgsParamRandomBig}},
	}
	bounds := ParameterBounds{Min: 5, Max: 7, BigMin: 100, BigMax: 102}
	sink := &recordSink{}
	l.Run(sink, bounds, rand.New(rand.NewSource(42)))
	if len(sink.igs) != 10 {
		t.Fatalf("got %d commands, want 10", len(sink.igs))
	}
	for _, c := range sink.igs {
		if c.Args[0] < 5 || c.Args[0] > 7 {
			t.Fatalf("small random %d outside [5,7]", c.Args[0])
		}
		if c.Args[1] < 100 || c.Args[1] > 102 {
			t.Fatalf("big random %d outside [100,102]", c.Args[1])
		}
	}
}

func TestIgsLoopChainGang(t *testing.T) {
	sink := parseAll(NewIgsParser(), []byte("G#&>0,10,5,0,>PD@,4,x,y,:,x,y:"))
	if len(sink.igs) != 1 || sink.igs[0].Op != IgsLoopOp {
		t.Fatalf("igs = %+v, want one loop", sink.igs)
	}
	l := sink.igs[0].Loop
	if !reflect.DeepEqual(l.Targets, []byte("PD")) {
		t.Fatalf("targets = %q", l.Targets)
	}

	run := &recordSink{}
	l.Run(run, DefaultParameterBounds(), rand.New(rand.NewSource(1)))
	want := []IgsCommand{
		{Op: IgsPolymarkerPlot, Args: []int{0, 10}},
		{Op: IgsLineDrawTo, Args: []int{0, 10}},
		{Op: IgsPolymarkerPlot, Args: []int{5, 5}},
		{Op: IgsLineDrawTo, Args: []int{5, 5}},
		{Op: IgsPolymarkerPlot, Args: []int{10, 0}},
		{Op: IgsLineDrawTo, Args: []int{10, 0}},
	}
	if !reflect.DeepEqual(run.igs, want) {
		t.Fatalf("igs = %+v, want %+v", run.igs, want)
	}
}

func TestIgsLoopGroupSeparatorIsNotAParameter(t *testing.T) {
	sink := parseAll(NewIgsParser(), []byte("G#&>0,10,5,0,>PD@,4,x,y,:,x,y:"))
	if len(sink.igs) != 1 {
		t.Fatalf("igs = %+v, want one loop", sink.igs)
	}
	// The comma after ':' delimits the next group; it must not inject
	// an empty constant-0 parameter.
	want := []IgsParameter{
		{Kind: IgsParamStepX},
		{Kind: IgsParamStepY},
		{Kind: IgsParamGroupSep},
		{Kind: IgsParamStepX},
		{Kind: IgsParamStepY},
	}
	if !reflect.DeepEqual(sink.igs[0].Loop.Params, want) {
		t.Fatalf("params = %+v, want %+v", sink.igs[0].Loop.Params, want)
	}
}

func TestIgsLoopInvalidTargetStops(t *testing.T) {
	l := &IgsLoop{
		From: 0, To: 5, Step: 1,
		Targets: []byte{'L'},
		Params:  []IgsParameter{{Kind: IgsParamStepX}},
	}
	sink := &recordSink{}
	l.Run(sink, DefaultParameterBounds(), rand.New(rand.NewSource(1)))
	if len(sink.igs) != 0 {
		t.Fatalf("igs = %+v, want nothing for short parameter group", sink.igs)
	}
	if len(sink.warnings) != 1 {
		t.Fatalf("warnings = %+v, want one", sink.warnings)
	}
}
