package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCentsFromMajor(t *testing.T) {
	assert.Equal(t, Cents(14999), CentsFromMajor(149.99))
	assert.Equal(t, Cents(-250), CentsFromMajor(-2.50))
	assert.Equal(t, Cents(100), CentsFromMajor(0.999)) // rounds, never truncates
}

func TestCentsMulRatio(t *testing.T) {
	assert.Equal(t, Cents(1080), Cents(1000).MulRatio(1.08))
	assert.Equal(t, Cents(500), Cents(1000).MulRatio(0.5))
	// Half rounds away from zero
	assert.Equal(t, Cents(2), Cents(3).MulRatio(0.5))
}

func TestCentsPercent(t *testing.T) {
	// 15% of 150.00 = 22.50
	assert.Equal(t, Cents(2250), Cents(15000).Percent(15))
}

func TestCentsClamp(t *testing.T) {
	assert.Equal(t, Cents(30), Cents(10).Clamp(30, 350))
	assert.Equal(t, Cents(350), Cents(1000).Clamp(30, 350))
	assert.Equal(t, Cents(100), Cents(100).Clamp(30, 350))
}

func TestCentsString(t *testing.T) {
	assert.Equal(t, "149.99", Cents(14999).String())
	assert.Equal(t, "-2.05", Cents(-205).String())
	assert.Equal(t, "0.09", Cents(9).String())
}
