package main

import (
	"fmt"

	"github.com/andresuchdata/qota-finance/backend-go/internal/drive"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func driveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "credentials",
			Usage:   "Service account JSON key",
			EnvVars: []string{"GOOGLE_DRIVE_CREDENTIALS_JSON"},
		},
		&cli.StringFlag{
			Name:    "folder-id",
			Usage:   "Drive folder ID holding the import files",
			EnvVars: []string{"GOOGLE_DRIVE_FOLDER_ID"},
		},
		&cli.StringFlag{
			Name:  "folder-path",
			Usage: "Drive folder path from the root, used when folder-id is empty",
		},
		&cli.StringFlag{
			Name:    "download-dir",
			Usage:   "Local directory for downloaded files",
			Value:   "./data/tmp/drive",
			EnvVars: []string{"GOOGLE_DRIVE_DOWNLOAD_DIR"},
		},
	}
}

func importFromDrive(c *cli.Context) error {
	credentials := c.String("credentials")
	if credentials == "" {
		return fmt.Errorf("drive credentials are required (--credentials or GOOGLE_DRIVE_CREDENTIALS_JSON)")
	}

	svc, err := drive.NewService(c.Context, credentials)
	if err != nil {
		return err
	}

	folderID := c.String("folder-id")
	if folderID == "" {
		folderID, err = svc.FindFolderByPath(c.Context, c.String("folder-path"))
		if err != nil {
			return err
		}
	}

	paths, err := drive.NewDownloader(svc).DownloadFolder(c.Context, drive.DownloadOptions{
		FolderID:    folderID,
		DownloadDir: c.String("download-dir"),
		Match:       importable,
	})
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		log.Warn().Str("folder", folderID).Msg("no importable files found in drive folder")
		return nil
	}

	return runImport(c, paths)
}
