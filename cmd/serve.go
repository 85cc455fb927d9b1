package cmd

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/libraz/midi-sketch-sub003/validate"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve validation over HTTP",
	Long:  `Serve exposes POST /validate: send raw MIDI bytes, get the report JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		router := mux.NewRouter().StrictSlash(true)
		router.HandleFunc("/validate", HandleValidate).Methods("POST")
		router.HandleFunc("/health", handleHealth).Methods("GET")

		handler := cors.Default().Handler(router)
		logrus.WithField("addr", serveAddr).Info("serving validation")
		return http.ListenAndServe(serveAddr, handler)
	},
}

// HandleValidate runs the validator over the request body and writes
// the compact report JSON. The response is 200 regardless of validity;
// the report's valid flag carries the verdict.
func HandleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "could not read request body", http.StatusBadRequest)
		return
	}

	report := validate.Validate(body)
	out, err := validate.RenderJSON(report)
	if err != nil {
		logrus.WithError(err).Error("rendering report")
		http.Error(w, "could not render report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(out)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
