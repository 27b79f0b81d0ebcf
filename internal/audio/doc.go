// Package audio decodes source recordings into mono PCM and cuts them into
// fixed-duration windows.
//
// Decoding shells out to ffmpeg, which re-encodes any supported container to a
// 16 kHz mono WAV. Everything after that (slicing, window export) is done on the
// in-memory PCM so chunk export never touches ffmpeg again.
package audio
