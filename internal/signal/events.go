package signal

// Scripted responses mirror what a headset would show when the wearer
// reacts to a prompt. Each one is an explicit Adjust over the current
// vector; the random walk resumes from the adjusted values.

func ptr(v float64) *float64 { return &v }

// StressResponse raises stress by level, drains relaxation by half of it,
// and sharpens attention by a third.
func (f *Feed) StressResponse(level float64) Vector {
	cur := f.Snapshot()
	return f.Adjust(Adjustment{
		Stress:     ptr(cur.Stress + level),
		Relaxation: ptr(cur.Relaxation - level/2),
		Attention:  ptr(cur.Attention + level/3),
	})
}

// RelaxResponse raises relaxation by level, eases stress by half of it,
// and lets attention drift down by a quarter.
func (f *Feed) RelaxResponse(level float64) Vector {
	cur := f.Snapshot()
	return f.Adjust(Adjustment{
		Relaxation: ptr(cur.Relaxation + level),
		Stress:     ptr(cur.Stress - level/2),
		Attention:  ptr(cur.Attention - level/4),
	})
}

// RecognitionResponse models the wearer recognizing (or failing to
// recognize) a face. Recognition jumps +30 with a small attention boost,
// or drops -20 with a stress spike.
func (f *Feed) RecognitionResponse(recognized bool) Vector {
	cur := f.Snapshot()
	if recognized {
		return f.Adjust(Adjustment{
			Recognition: ptr(cur.Recognition + 30),
			Attention:   ptr(cur.Attention + 10),
		})
	}
	return f.Adjust(Adjustment{
		Recognition: ptr(cur.Recognition - 20),
		Stress:      ptr(cur.Stress + 15),
	})
}
