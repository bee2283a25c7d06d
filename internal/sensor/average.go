package sensor

// lm35VoltsPerDegree is the LM35 output slope (10 mV/°C).
const lm35VoltsPerDegree = 0.01

// adcReferenceVolts is the full-scale voltage of a normalised ADC reading.
const adcReferenceVolts = 3.3

// LM35Celsius converts a normalised [0, 1] ADC reading of an LM35 to °C.
func LM35Celsius(analog float64) float64 {
	return analog * adcReferenceVolts / lm35VoltsPerDegree
}

// Averager is a fixed-window moving average of temperature samples.
// Until the window fills up, the average covers the samples seen so far.
type Averager struct {
	// samples is the circular sample window.
	samples []float64
	// next is the index the next sample is written to.
	next int
	// filled is the number of valid samples in the window.
	filled int
}

// NewAverager creates an averager over window samples.
func NewAverager(window int) *Averager {
	if window <= 0 {
		window = 1
	}

	return &Averager{
		samples: make([]float64, window),
	}
}

// Add stores a sample, overwriting the oldest one, and returns the new average.
func (a *Averager) Add(sample float64) float64 {
	a.samples[a.next] = sample
	a.next = (a.next + 1) % len(a.samples)

	if a.filled < len(a.samples) {
		a.filled++
	}

	return a.Average()
}

// Average returns the mean of the stored samples, or zero when empty.
func (a *Averager) Average() float64 {
	if a.filled == 0 {
		return 0
	}

	var sum float64
	for i := range a.filled {
		sum += a.samples[i]
	}

	return sum / float64(a.filled)
}

// Len returns the number of stored samples.
func (a *Averager) Len() int {
	return a.filled
}
