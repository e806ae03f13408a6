package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"folio-assistant/internal/infra/config"
)

// runEncrypt prints the enc: form of a secret for config.yaml.
func runEncrypt(args []string, w io.Writer) error {
	args = stripFlags(args)
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return errors.New("usage: folio-assistant encrypt VALUE")
	}
	passphrase := os.Getenv(config.EnvPrefix + "CONFIG_KEY")
	if passphrase == "" {
		return fmt.Errorf("%sCONFIG_KEY must be set", config.EnvPrefix)
	}
	enc, err := config.EncryptValue(args[0], passphrase)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "enc:%s\n", enc)
	return nil
}
