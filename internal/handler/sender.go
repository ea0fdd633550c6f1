package handler

import (
	tele "gopkg.in/telebot.v3"
)

// Sender delivers downloaded files to users through the bot API.
// It implements service.MediaSender.
type Sender struct {
	bot *tele.Bot
}

// NewSender creates a new sender
func NewSender(bot *tele.Bot) *Sender {
	return &Sender{bot: bot}
}

func (s *Sender) SendMessage(userID int64, text string) error {
	_, err := s.bot.Send(tele.ChatID(userID), text)
	return err
}

func (s *Sender) SendVideo(userID int64, path, caption string) error {
	video := &tele.Video{File: tele.FromDisk(path), Caption: caption, Streaming: true}
	_, err := s.bot.Send(tele.ChatID(userID), video)
	return err
}

func (s *Sender) SendPhoto(userID int64, path, caption string) error {
	photo := &tele.Photo{File: tele.FromDisk(path), Caption: caption}
	_, err := s.bot.Send(tele.ChatID(userID), photo)
	return err
}

func (s *Sender) SendAudio(userID int64, path, caption string) error {
	audio := &tele.Audio{File: tele.FromDisk(path), Caption: caption}
	_, err := s.bot.Send(tele.ChatID(userID), audio)
	return err
}

func (s *Sender) SendVoice(userID int64, path string) error {
	voice := &tele.Voice{File: tele.FromDisk(path)}
	_, err := s.bot.Send(tele.ChatID(userID), voice)
	return err
}

func (s *Sender) SendAnimation(userID int64, path, caption string) error {
	animation := &tele.Animation{File: tele.FromDisk(path), Caption: caption}
	_, err := s.bot.Send(tele.ChatID(userID), animation)
	return err
}

func (s *Sender) SendSticker(userID int64, path string) error {
	sticker := &tele.Sticker{File: tele.FromDisk(path)}
	_, err := s.bot.Send(tele.ChatID(userID), sticker)
	return err
}

func (s *Sender) SendDocument(userID int64, path, fileName, caption string) error {
	doc := &tele.Document{File: tele.FromDisk(path), FileName: fileName, Caption: caption}
	_, err := s.bot.Send(tele.ChatID(userID), doc)
	return err
}
