package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
	goji "goji.io"
	"goji.io/pat"

	"github.com/chuhuiyu/mxstim/stimsrv"
)

// buildMux places the session's routes on the root and under a submux
// per configured well, so multi-well chips expose /well3/send and
// friends.  Wells on one chip share the rig and thus the session; the
// well in the URL selects nothing today but keeps clients' URLs stable
// when per-well routing lands in the hardware server.
func buildMux(srv *stimsrv.Server, wells []int) *goji.Mux {
	root := goji.NewMux()
	root.Handle(pat.New("/*"), srv.Routes())
	for _, w := range wells {
		prefix := fmt.Sprintf("/well%d", w)
		sub := goji.SubMux()
		sub.Handle(pat.New("/*"), http.StripPrefix(prefix, srv.Routes()))
		root.Handle(pat.New(prefix+"/*"), sub)
	}
	return root
}

func serveCmd() *cobra.Command {
	var bind string
	c := &cobra.Command{
		Use:   "serve",
		Short: "expose the session over HTTP",
		Long: `serve runs Setup against the configured rig, then listens for HTTP
requests to compile and deliver sequences, query the allocation, and
manage unit power.  Each configured well gets its own URL prefix.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession()
			if err != nil {
				return err
			}
			defer sess.PowerOffAll()
			mux := buildMux(stimsrv.New(sess), sess.Cfg.Wells)
			log.Printf("stimctl serving session %s on %s", sess.ID, bind)
			return http.ListenAndServe(bind, mux)
		},
	}
	c.Flags().StringVarP(&bind, "bind", "b", ":8675", "host:port to listen on")
	return c
}
