package main

import (
	"context"
	"fmt"
	"os"

	"github.com/akhdanrgya/teluhub-client/constant"
	"github.com/akhdanrgya/teluhub-client/model"
	"github.com/akhdanrgya/teluhub-client/utils/errors"
	"github.com/spf13/cobra"
)

type imageUploader interface {
	UploadImage(ctx context.Context, filename string, content []byte) (string, error)
}

// resolveImage returns imageURL, or the URL of imageFile once uploaded.
func resolveImage(ctx context.Context, up imageUploader, imageURL, imageFile string) (string, error) {
	if imageFile == "" {
		return imageURL, nil
	}
	if imageURL != "" {
		return "", errors.SetCustomErrorMessage(constant.ErrInvalidRequest, "use either --image or --image-file")
	}

	content, err := os.ReadFile(imageFile)
	if err != nil {
		return "", errors.SetCustomErrorMessage(constant.ErrInvalidRequest, "cannot read "+imageFile)
	}
	return up.UploadImage(ctx, imageFile, content)
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage your own profile",
}

var (
	accountUsername  string
	accountImage     string
	accountImageFile string
)

// teluhub account edit
var accountEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Change your username or profile picture",
	RunE: func(cmd *cobra.Command, args []string) error {
		image, err := resolveImage(cmd.Context(), client.uploads, accountImage, accountImageFile)
		if err != nil {
			return err
		}

		user, err := client.users.UpdateProfile(cmd.Context(), &model.UpdateProfileRequest{
			Username:        accountUsername,
			ProfileImageURL: image,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Profile updated: %s\n", user.Username)
		if user.ProfileImageURL != "" {
			fmt.Println(mutedStyle.Render(user.ProfileImageURL))
		}
		return nil
	},
}

func init() {
	accountEditCmd.Flags().StringVar(&accountUsername, "username", "", "New username")
	accountEditCmd.Flags().StringVar(&accountImage, "image", "", "Profile picture URL")
	accountEditCmd.Flags().StringVar(&accountImageFile, "image-file", "", "Upload this JPEG, PNG or GIF as the profile picture")

	accountCmd.AddCommand(accountEditCmd)
}
