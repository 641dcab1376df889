package operations

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/kbukum/ribbitkit/httpclient"
)

// Builtin returns the standard operations.
func Builtin() []Operation {
	return []Operation{
		{Name: "get", Args: "<uri>", Summary: "signed GET, prints the body", MinArgs: 1, MaxArgs: 1, Run: get},
		{Name: "delete", Args: "<uri>", Summary: "signed DELETE, prints the status", MinArgs: 1, MaxArgs: 1, Run: del},
		{Name: "post", Args: "<uri> [json]", Summary: "signed POST, prints the Location or body", MinArgs: 1, MaxArgs: 2, Run: post},
		{Name: "put", Args: "<uri> <json>", Summary: "signed PUT, prints the body", MinArgs: 2, MaxArgs: 2, Run: put},
		{Name: "upload", Args: "<uri> <file> [content-type]", Summary: "uploads a file verbatim", MinArgs: 2, MaxArgs: 3, Run: upload},
		{Name: "download", Args: "<uri> <path> [accept]", Summary: "streams a GET into a file", MinArgs: 2, MaxArgs: 3, Run: download},
		{Name: "signed-url", Args: "<uri>", Summary: "prints a URL carrying its own signature", MinArgs: 1, MaxArgs: 1, Run: signedURL},
		{Name: "login", Args: "<username> <password>", Summary: "logs in and signs later calls as the user", MinArgs: 2, MaxArgs: 2, Run: login},
		{Name: "logout", Summary: "drops the user session", Run: logout},
	}
}

// Default returns a Registry holding the builtin operations.
func Default() *Registry {
	r := NewRegistry()
	for _, op := range Builtin() {
		if err := r.Register(op); err != nil {
			panic(err)
		}
	}
	return r
}

func get(ctx context.Context, env *Env, args []string) (string, error) {
	resp, err := env.Client.Get(ctx, args[0])
	if err != nil {
		return "", err
	}
	return string(resp.Body), nil
}

func del(ctx context.Context, env *Env, args []string) (string, error) {
	resp, err := env.Client.Delete(ctx, args[0])
	if err != nil {
		return "", err
	}
	return strconv.Itoa(resp.StatusCode), nil
}

func post(ctx context.Context, env *Env, args []string) (string, error) {
	var payload any
	if len(args) > 1 {
		raw, err := jsonArg(args[1])
		if err != nil {
			return "", err
		}
		payload = raw
	}
	resp, err := env.Client.Post(ctx, payload, args[0])
	if err != nil {
		return "", err
	}
	return resp.Value(), nil
}

func put(ctx context.Context, env *Env, args []string) (string, error) {
	raw, err := jsonArg(args[1])
	if err != nil {
		return "", err
	}
	resp, err := env.Client.Put(ctx, raw, args[0])
	if err != nil {
		return "", err
	}
	return resp.Value(), nil
}

func upload(ctx context.Context, env *Env, args []string) (string, error) {
	data, err := os.ReadFile(args[1])
	if err != nil {
		return "", fmt.Errorf("operations: read upload: %w", err)
	}
	var opts []httpclient.CallOption
	if len(args) > 2 {
		opts = append(opts, httpclient.WithContentType(args[2]))
	}
	resp, err := env.Client.PostBinary(ctx, data, args[0], opts...)
	if err != nil {
		return "", err
	}
	return resp.Value(), nil
}

func download(ctx context.Context, env *Env, args []string) (string, error) {
	accept := ""
	if len(args) > 2 {
		accept = args[2]
	}
	resp, err := env.Client.GetToFile(ctx, args[0], args[1], accept)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("wrote %d bytes to %s", resp.Written, args[1]), nil
}

func signedURL(_ context.Context, env *Env, args []string) (string, error) {
	return env.Client.SignedURL(args[0])
}

func login(ctx context.Context, env *Env, args []string) (string, error) {
	if env.Sessions == nil {
		return "", fmt.Errorf("operations: login needs a session manager")
	}
	user, err := env.Sessions.Login(ctx, args[0], args[1])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("logged in as %s (%s)", user.Name, user.ID), nil
}

func logout(_ context.Context, env *Env, _ []string) (string, error) {
	if env.Sessions == nil {
		return "", fmt.Errorf("operations: logout needs a session manager")
	}
	env.Sessions.Logout()
	return "logged out", nil
}

// jsonArg validates s and passes it through without re-encoding.
func jsonArg(s string) (json.RawMessage, error) {
	if !json.Valid([]byte(s)) {
		return nil, fmt.Errorf("%w: body is not valid JSON", ErrUsage)
	}
	return json.RawMessage(s), nil
}
