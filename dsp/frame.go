package dsp

// Channels is the number of interleaved channels carried by a Frame.
const Channels = 2

// Frame is one stereo sample. Slot 0 is left or main, slot 1 right or aux.
type Frame [Channels]float32
