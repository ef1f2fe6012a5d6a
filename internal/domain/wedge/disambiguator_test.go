package wedge_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/scanledger/internal/domain/wedge"
)

var t0 = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

// burst genera keydowns de code separados por gap, más un Enter gap después del último.
func burst(code string, start time.Time, gap time.Duration, target wedge.Target) []wedge.KeyEvent {
	evs := make([]wedge.KeyEvent, 0, len(code)+1)
	at := start
	for _, r := range code {
		evs = append(evs, wedge.KeyEvent{Key: string(r), Target: target, At: at})
		at = at.Add(gap)
	}
	return append(evs, wedge.KeyEvent{Key: wedge.KeyEnter, Target: target, At: at})
}

func feedAll(d *wedge.Disambiguator, evs []wedge.KeyEvent) (scans []string, intercepted int) {
	for _, ev := range evs {
		v := d.Handle(ev)
		if v.Intercept {
			intercepted++
		}
		if v.Scan != "" {
			scans = append(scans, v.Scan)
		}
	}
	return scans, intercepted
}

func TestHandle_FastBurstIsOneScan(t *testing.T) {
	d := wedge.NewDisambiguator(wedge.DefaultConfig())
	scans, intercepted := feedAll(d, burst("AGL12345", t0, 5*time.Millisecond, wedge.TargetNone))

	assert.Equal(t, []string{"AGL12345"}, scans)
	assert.Equal(t, 9, intercepted, "los 8 caracteres y el Enter se suprimen")
	assert.Empty(t, d.Buffered(), "el buffer se limpia tras despachar")
}

func TestHandle_SlowKeysNeverAssemble(t *testing.T) {
	d := wedge.NewDisambiguator(wedge.DefaultConfig())
	scans, _ := feedAll(d, burst("AGL12345", t0, 500*time.Millisecond, wedge.TargetNone))

	assert.Empty(t, scans)
}

func TestHandle_SlowKeysThenQuickEnterBelowMinimum(t *testing.T) {
	d := wedge.NewDisambiguator(wedge.DefaultConfig())
	evs := burst("AGL12345", t0, 500*time.Millisecond, wedge.TargetNone)
	// Enter 5ms después del último carácter: el buffer solo tiene ese carácter.
	last := evs[len(evs)-2].At
	evs[len(evs)-1].At = last.Add(5 * time.Millisecond)

	scans, _ := feedAll(d, evs)
	assert.Empty(t, scans)
}

func TestHandle_FieldTypingIsNeverCaptured(t *testing.T) {
	for _, target := range []wedge.Target{
		wedge.TargetTextInput, wedge.TargetTextArea, wedge.TargetContentEditable, wedge.TargetBarcodeField,
	} {
		d := wedge.NewDisambiguator(wedge.DefaultConfig())
		scans, intercepted := feedAll(d, burst("AGL12345", t0, time.Millisecond, target))

		assert.Empty(t, scans, "target %d", target)
		assert.Zero(t, intercepted, "target %d: los eventos pasan sin interceptar", target)
		assert.Empty(t, d.Buffered())
	}
}

func TestHandle_FieldFocusResetsGlobalBuffer(t *testing.T) {
	d := wedge.NewDisambiguator(wedge.DefaultConfig())
	evs := burst("ABCD", t0, time.Millisecond, wedge.TargetNone)
	// a mitad de la ráfaga el foco pasa a un input
	evs[2].Target = wedge.TargetTextInput

	scans, _ := feedAll(d, evs)
	assert.Empty(t, scans, "solo queda 1 carácter tras el reset")
}

func TestHandle_EnterBelowMinimumIsSilent(t *testing.T) {
	d := wedge.NewDisambiguator(wedge.Config{BurstTimeout: 200 * time.Millisecond, MinLength: 4})
	evs := burst("AB1", t0, time.Millisecond, wedge.TargetNone)

	scans, _ := feedAll(d, evs)
	assert.Empty(t, scans)
	v := d.Handle(wedge.KeyEvent{Key: wedge.KeyEnter, At: t0.Add(time.Second)})
	assert.False(t, v.Intercept, "Enter sin ráfaga no se suprime")
}

func TestHandle_ModifiersAndNavigationBreakBurst(t *testing.T) {
	d := wedge.NewDisambiguator(wedge.DefaultConfig())
	at := t0
	for _, k := range []string{"A", "B", "C"} {
		d.Handle(wedge.KeyEvent{Key: k, At: at})
		at = at.Add(time.Millisecond)
	}
	v := d.Handle(wedge.KeyEvent{Key: "ArrowLeft", At: at})
	assert.False(t, v.Intercept)
	assert.Empty(t, d.Buffered())

	v = d.Handle(wedge.KeyEvent{Key: "c", Ctrl: true, At: at})
	assert.False(t, v.Intercept, "Ctrl+C no es parte de un escaneo")
}

func TestHandle_ShiftIsAllowedForUppercase(t *testing.T) {
	d := wedge.NewDisambiguator(wedge.DefaultConfig())
	at := t0
	for _, k := range []string{"A", "G", "-", "9"} {
		v := d.Handle(wedge.KeyEvent{Key: k, Shift: k == "A" || k == "G", At: at})
		assert.True(t, v.Intercept)
		at = at.Add(2 * time.Millisecond)
	}
	v := d.Handle(wedge.KeyEvent{Key: wedge.KeyEnter, At: at})
	assert.Equal(t, "AG-9", v.Scan)
}

func TestHandle_StaleBufferDiscardedBeforeNewBurst(t *testing.T) {
	d := wedge.NewDisambiguator(wedge.DefaultConfig())
	d.Handle(wedge.KeyEvent{Key: "x", At: t0})
	scans, _ := feedAll(d, burst("REAL1", t0.Add(time.Second), 3*time.Millisecond, wedge.TargetNone))

	assert.Equal(t, []string{"REAL1"}, scans, "la tecla suelta de antes no contamina el escaneo")
}
