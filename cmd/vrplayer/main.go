// vrplayer: panoramic video player session server
// Browsers connect over WebSocket and the server drives camera rotation,
// playback and the controls overlay.
package main

import "os"

var version = "1.0.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
