package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypewriter_RevealsByRune(t *testing.T) {
	var tw typewriter
	tw.Reset("안녕하세요")

	assert.Equal(t, "", tw.Visible())
	assert.True(t, tw.Step(2))
	assert.Equal(t, "안녕", tw.Visible())
	assert.True(t, tw.Step(2))
	assert.Equal(t, "안녕하세", tw.Visible())
	assert.False(t, tw.Step(2))
	assert.Equal(t, "안녕하세요", tw.Visible())
	assert.True(t, tw.Done())
}

func TestTypewriter_Skip(t *testing.T) {
	var tw typewriter
	tw.Reset("실험을 시작합니다")
	tw.Skip()
	assert.True(t, tw.Done())
	assert.Equal(t, "실험을 시작합니다", tw.Visible())
}

func TestTypewriter_StaleTicksIgnored(t *testing.T) {
	var tw typewriter
	first := tw.Reset("one")
	second := tw.Reset("two")

	assert.NotEqual(t, first, second)
	assert.False(t, tw.Current(typingTickMsg{gen: first}))
	assert.True(t, tw.Current(typingTickMsg{gen: second}))
}

func TestTypewriter_EmptyTextIsDone(t *testing.T) {
	var tw typewriter
	tw.Reset("")
	assert.True(t, tw.Done())
	assert.False(t, tw.Step(1))
}
