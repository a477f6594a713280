package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPtpServoConvergesToNegativeSlope(t *testing.T) {
	servo := NewPtpServo()
	servo.startTime = time.Now().Add(-1 * time.Second)

	const bPPB = 200.0
	base := time.Now()
	for i := 0; i < 40; i++ {
		elapsed := time.Duration(i) * 10 * time.Millisecond
		servo.startTime = base.Add(-elapsed)
		tSec := elapsed.Seconds()
		offsetNs := int64(bPPB * tSec)
		servo.Update(offsetNs, 500)
	}

	got := servo.Sample().FreqPPB
	assert.InDelta(t, -bPPB, got, 20.0)
}

func TestPtpServoLocksOnConstantOffset(t *testing.T) {
	servo := NewPtpServo()
	for i := 0; i < 20; i++ {
		servo.Update(1000, 500)
	}
	assert.True(t, servo.Sample().Locked)
}

func TestPtpServoClampsToRange(t *testing.T) {
	servo := NewPtpServo()
	base := time.Now()
	for i := 0; i < 40; i++ {
		elapsed := time.Duration(i) * time.Millisecond
		servo.startTime = base.Add(-elapsed)
		servo.Update(int64(i)*1_000_000_000, 500)
	}
	got := servo.Sample().FreqPPB
	assert.LessOrEqual(t, got, ptpClampPPB)
	assert.GreaterOrEqual(t, got, -ptpClampPPB)
}
