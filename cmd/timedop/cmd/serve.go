package cmd

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/spf13/cobra"

	"github.com/psantana5/timedop/pkg/report"
)

var serveListen string

// serveCmd exposes call counters over HTTP: Prometheus exposition on
// /metrics and a JSON snapshot with host info on /stats.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve call metrics over HTTP",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListen, "listen", ":9090", "listen address")
}

type statsResponse struct {
	Counters report.Snapshot `json:"counters"`
	Host     hostInfo        `json:"host"`
}

type hostInfo struct {
	OS         string  `json:"os"`
	Arch       string  `json:"arch"`
	CPUThreads int     `json:"cpu_threads"`
	MemTotal   uint64  `json:"mem_total_bytes"`
	MemUsedPct float64 `json:"mem_used_percent"`
}

func runServe(cmd *cobra.Command, args []string) error {
	log := newLogger()

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/stats", handleStats).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:         serveListen,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("serving metrics", map[string]interface{}{"listen": serveListen})
	return srv.ListenAndServe()
}

func handleStats(w http.ResponseWriter, r *http.Request) {
	info := hostInfo{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}
	if threads, err := cpu.Counts(true); err == nil {
		info.CPUThreads = threads
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemTotal = vm.Total
		info.MemUsedPct = vm.UsedPercent
	}

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(statsResponse{
		Counters: report.Global().Snapshot(),
		Host:     info,
	})
}
