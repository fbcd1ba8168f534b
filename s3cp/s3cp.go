package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli"

	"github.com/kilnland/s3kit"
	"github.com/kilnland/s3kit/credentials"
)

func main() {
	app := cli.NewApp()
	app.Name = "s3cp"
	app.Usage = "Copies a file between the local filesystem and an S3-compatible endpoint"
	app.ArgsUsage = "<source> <target>   (s3://bucket/key or a local path)"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "endpoint",
			Usage:  "endpoint host, e.g. play.min.io or localhost:9000",
			EnvVar: "S3_ENDPOINT",
			Value:  "s3.amazonaws.com",
		},
		cli.StringFlag{
			Name:   "region",
			Usage:  "signing region",
			EnvVar: "AWS_REGION",
			Value:  "us-east-1",
		},
		cli.StringFlag{
			Name:   "accessKey",
			Usage:  "access key id",
			EnvVar: "AWS_ACCESS_KEY_ID",
		},
		cli.StringFlag{
			Name:   "secretKey",
			Usage:  "secret access key",
			EnvVar: "AWS_SECRET_ACCESS_KEY",
		},
		cli.BoolFlag{
			Name:  "insecure",
			Usage: "use http instead of https",
		},
	}
	app.Action = func(c *cli.Context) error {
		src, dst := c.Args().Get(0), c.Args().Get(1)
		if src == "" || dst == "" {
			return errors.New("s3cp requires 2 non-empty arguments")
		}
		client, err := newClient(c)
		if err != nil {
			return err
		}
		fmt.Printf("Copying %s to %s\n", color.CyanString(src), color.CyanString(dst))
		if err := copyFile(context.Background(), client, src, dst); err != nil {
			return fmt.Errorf("%s: %w", color.RedString("copy failed"), err)
		}
		color.Green("done")
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}

func newClient(c *cli.Context) (*s3kit.Client, error) {
	opts := []s3kit.Option{
		s3kit.WithRegion(c.String("region")),
		s3kit.WithSecure(!c.Bool("insecure")),
	}
	if c.String("accessKey") != "" {
		opts = append(opts, s3kit.WithCredentials(
			credentials.NewStatic(c.String("accessKey"), c.String("secretKey"), "")))
	}
	return s3kit.New(c.String("endpoint"), opts...)
}

func copyFile(ctx context.Context, client *s3kit.Client, src, dst string) error {
	srcBucket, srcKey, srcRemote, err := splitURI(src)
	if err != nil {
		return err
	}
	dstBucket, dstKey, dstRemote, err := splitURI(dst)
	if err != nil {
		return err
	}

	switch {
	case srcRemote && dstRemote:
		_, err := client.CopyObject(ctx, dstBucket, dstKey, s3kit.CopySource{Bucket: srcBucket, Object: srcKey})
		return err
	case srcRemote:
		return client.FGetObject(ctx, srcBucket, srcKey, dst)
	case dstRemote:
		return client.FPutObject(ctx, dstBucket, dstKey, src)
	default:
		return errors.New("at least one argument must be an s3:// URI")
	}
}

func splitURI(arg string) (bucket, key string, remote bool, err error) {
	u, err := url.Parse(arg)
	if err != nil || u.Scheme != "s3" {
		return "", "", false, nil
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", false, fmt.Errorf("malformed S3 URI %q, want s3://bucket/key", arg)
	}
	return u.Host, key, true, nil
}
