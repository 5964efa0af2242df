package mjpeg

import "time"

// watchdog은 재설정 가능한 단발성 타이머.
// time.Timer의 Reset 규칙(정지 후 채널 드레인)을 감싸서
// 데이터 도착과 만료가 경합해도 안전하게 재설정할 수 있게 한다.
type watchdog struct {
	timer *time.Timer
	d     time.Duration
}

func newWatchdog(d time.Duration) *watchdog {
	return &watchdog{
		timer: time.NewTimer(d),
		d:     d,
	}
}

// C는 만료 채널을 반환
func (w *watchdog) C() <-chan time.Time {
	return w.timer.C
}

// reset은 타이머를 처음 길이로 되감는다. 만료 직후에도 안전하다.
func (w *watchdog) reset() {
	if !w.timer.Stop() {
		select {
		case <-w.timer.C:
		default:
		}
	}
	w.timer.Reset(w.d)
}

// rewind는 타이머를 새 길이로 교체하고 되감는다.
func (w *watchdog) rewind(d time.Duration) {
	w.d = d
	w.reset()
}

// stop은 타이머를 멈춘다. 이후 C는 절대 수신되지 않는다.
func (w *watchdog) stop() {
	if !w.timer.Stop() {
		select {
		case <-w.timer.C:
		default:
		}
	}
}
