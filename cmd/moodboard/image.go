package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/totegamma/moodboard/client"
)

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Manage images on a running server",
}

var imageUploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload image files",
	Long: `Upload one or more image files. Each is stored under its base name;
an existing image with the same name is replaced.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImageUpload,
}

var imageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List image paths",
	Args:  cobra.NoArgs,
	RunE:  runImageList,
}

var imageRmCmd = &cobra.Command{
	Use:   "rm <filename>",
	Short: "Delete an image",
	Args:  cobra.ExactArgs(1),
	RunE:  runImageRm,
}

var imageUploadAs string

func init() {
	imageUploadCmd.Flags().StringVar(&imageUploadAs, "as", "", "store a single upload under this name")

	imageCmd.AddCommand(imageUploadCmd, imageListCmd, imageRmCmd)
	rootCmd.AddCommand(imageCmd)
}

func runImageUpload(cmd *cobra.Command, args []string) error {
	if imageUploadAs != "" && len(args) > 1 {
		return fmt.Errorf("--as needs exactly one file")
	}

	c := client.New(serverURL)
	for _, path := range args {
		name := filepath.Base(path)
		if imageUploadAs != "" {
			name = imageUploadAs
		}

		err := uploadFile(cmd, c, path, name)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func uploadFile(cmd *cobra.Command, c *client.Client, path, name string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	imagePath, err := c.UploadImage(cmd.Context(), name, file)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), imagePath)
	return nil
}

func runImageList(cmd *cobra.Command, args []string) error {
	images, err := client.New(serverURL).ListImages(cmd.Context())
	if err != nil {
		return err
	}
	for _, image := range images {
		fmt.Fprintln(cmd.OutOrStdout(), image)
	}
	return nil
}

func runImageRm(cmd *cobra.Command, args []string) error {
	err := client.New(serverURL).DeleteImage(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Image deleted successfully!")
	return nil
}
