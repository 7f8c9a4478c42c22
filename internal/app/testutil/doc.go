// Package testutil provides test doubles and fixtures shared by the
// converter, API and CLI tests.
//
//   - MockRecognizer: scripted provider.Recognizer with call tracking
//   - FakeSource and ScriptedListener: a silent microphone and an utterance
//     listener that replays scripted outcomes
//   - ProgressRecorder: captures progress percentages
//   - WAV fixtures synthesized with audio.EncodeWAV
package testutil
