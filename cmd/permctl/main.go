package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	u := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, u, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func scopePath(tenant, module, user string) string {
	return fmt.Sprintf("/v1/tenants/%s/modules/%s/users/%s",
		url.PathEscape(tenant), url.PathEscape(module), url.PathEscape(user))
}

func main() {
	var (
		baseURL = envOr("CERTA_PERMISSIONS_URL", "http://localhost:8080")
		out     = envOr("CERTA_PERMISSIONS_OUT", "text")
		timeout = 30 * time.Second
	)

	root := &cobra.Command{
		Use:   "permctl",
		Short: "CLI for the Certa permissions service",
	}
	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "base URL of the permissions API (env CERTA_PERMISSIONS_URL)")
	root.PersistentFlags().StringVar(&out, "out", out, "output format: json|text")

	cl := &client{BaseURL: baseURL, OutFormat: out, HTTP: &http.Client{Timeout: timeout}}

	var tenant, module, user string
	scoped := func(cmd *cobra.Command, withUser bool) {
		cmd.Flags().StringVar(&tenant, "tenant", "", "tenant UUID")
		cmd.Flags().StringVar(&module, "module", "", "module type, e.g. testing_lab")
		_ = cmd.MarkFlagRequired("tenant")
		_ = cmd.MarkFlagRequired("module")
		if withUser {
			cmd.Flags().StringVar(&user, "user", "", "user UUID")
			_ = cmd.MarkFlagRequired("user")
		}
	}

	assignCmd := &cobra.Command{
		Use:   "assign <role>",
		Short: "Grant a role to a user in a tenant/module scope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do(http.MethodPut, scopePath(tenant, module, user)+"/roles/"+url.PathEscape(args[0]), nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("assign failed: status=%d body=%s", status, string(body))
			}
			if cl.OutFormat == "text" {
				fmt.Println("ok")
				return nil
			}
			cl.print(status, []byte(`{"ok":true}`))
			return nil
		},
	}
	scoped(assignCmd, true)

	revokeCmd := &cobra.Command{
		Use:   "revoke <role>",
		Short: "Remove a role grant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do(http.MethodDelete, scopePath(tenant, module, user)+"/roles/"+url.PathEscape(args[0]), nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("revoke failed: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	scoped(revokeCmd, true)

	rolesCmd := &cobra.Command{
		Use:   "roles",
		Short: "List a user's roles in a tenant/module scope",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do(http.MethodGet, scopePath(tenant, module, user)+"/roles", nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}
	scoped(rolesCmd, true)

	permissionsCmd := &cobra.Command{
		Use:   "permissions",
		Short: "Resolve a user's effective permission set",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do(http.MethodGet, scopePath(tenant, module, user)+"/permissions", nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}
	scoped(permissionsCmd, true)

	checkCmd := &cobra.Command{
		Use:   "check <action>",
		Short: "Check one capability for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do(http.MethodGet, scopePath(tenant, module, user)+"/permissions/"+url.PathEscape(args[0]), nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}
	scoped(checkCmd, true)

	holdersCmd := &cobra.Command{
		Use:   "holders <role>",
		Short: "List current holders of a role in a tenant/module scope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/v1/tenants/%s/modules/%s/roles/%s/holders",
				url.PathEscape(tenant), url.PathEscape(module), url.PathEscape(args[0]))
			status, body, err := cl.do(http.MethodGet, path, nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}
	scoped(holdersCmd, false)

	var catalogModule string
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show a module's assignable role definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do(http.MethodGet, "/v1/modules/"+url.PathEscape(catalogModule)+"/roles", nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}
	catalogCmd.Flags().StringVar(&catalogModule, "module", "", "module type, e.g. testing_lab")
	_ = catalogCmd.MarkFlagRequired("module")

	var auditTenant, auditUser, auditModule string
	var auditPage, auditPageSize int
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "List recent role grant mutations",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if auditTenant != "" {
				q.Set("tenant_id", auditTenant)
			}
			if auditUser != "" {
				q.Set("user_id", auditUser)
			}
			if auditModule != "" {
				q.Set("module", auditModule)
			}
			if auditPage > 0 {
				q.Set("page", fmt.Sprint(auditPage))
			}
			if auditPageSize > 0 {
				q.Set("page_size", fmt.Sprint(auditPageSize))
			}
			path := "/v1/audit/events"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}
			status, body, err := cl.do(http.MethodGet, path, nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}
	auditCmd.Flags().StringVar(&auditTenant, "tenant", "", "filter by tenant UUID")
	auditCmd.Flags().StringVar(&auditUser, "user", "", "filter by user UUID")
	auditCmd.Flags().StringVar(&auditModule, "module", "", "filter by module type")
	auditCmd.Flags().IntVar(&auditPage, "page", 0, "page number")
	auditCmd.Flags().IntVar(&auditPageSize, "page-size", 0, "events per page")

	root.AddCommand(assignCmd, revokeCmd, rolesCmd, permissionsCmd, checkCmd, holdersCmd, catalogCmd, auditCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
