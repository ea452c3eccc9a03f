package layout

import (
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
)

func TestIsTooSmall(t *testing.T) {
	assert.True(t, IsTooSmall(MinWidth-1, MinHeight))
	assert.True(t, IsTooSmall(MinWidth, MinHeight-1))
	assert.False(t, IsTooSmall(MinWidth, MinHeight))
}

func TestRenderHeader(t *testing.T) {
	h := RenderHeader("Exam", Status{UserID: "local", Due: 3}, 80)
	assert.Contains(t, h, "RCCM")
	assert.Contains(t, h, "Exam")
	assert.Contains(t, h, "local")
	assert.Contains(t, h, "復習 3")

	h = RenderHeader("Exam", Status{UserID: "local"}, 80)
	assert.NotContains(t, h, "復習")
}

func TestRenderFrame_FillsHeight(t *testing.T) {
	header := RenderHeader("x", Status{}, 80)
	footer := RenderFooter([]KeyHint{{Key: "q", Description: "Quit"}}, 80)
	frame := RenderFrame(header, "body", footer, 80, 30)
	assert.Equal(t, 30, lipgloss.Height(frame))
	assert.Equal(t, 30-lipgloss.Height(header)-lipgloss.Height(footer), ContentHeight(header, footer, 30))
}
