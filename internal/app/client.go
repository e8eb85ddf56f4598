package app

import (
	"fmt"
	"strings"

	"github.com/altiplano-labs/camlink/internal/domain"
	"github.com/altiplano-labs/camlink/internal/ports"
	"github.com/altiplano-labs/camlink/internal/transport"
)

// Client issues commands to the remote camera endpoint and receives the
// resulting transfers.
type Client struct {
	link     ports.Link
	store    ports.ImageStore
	receiver *transport.Receiver
	logger   ports.Logger
}

// NewClient creates the fetching side of the link.
func NewClient(
	link ports.Link,
	store ports.ImageStore,
	receiverCfg transport.ReceiverConfig,
	logger ports.Logger,
) *Client {
	return &Client{
		link:     link,
		store:    store,
		receiver: transport.NewReceiver(link, receiverCfg, logger),
		logger:   logger,
	}
}

// RequestCapture asks the remote side to capture at the named resolution
// without transferring the image. Returns the announced size.
func (c *Client) RequestCapture(resolution string) (uint32, error) {
	if err := c.sendCommand(fmt.Sprintf("<CAPTURAR:{size_name:%s}>", normalizeResolution(resolution))); err != nil {
		return 0, err
	}
	resp, err := c.receiver.AwaitResponse()
	if err != nil {
		return 0, err
	}
	if !resp.OK {
		return 0, fmt.Errorf("%w: %s", domain.ErrRemoteRejected, resp.Reason)
	}
	c.logger.Info("capture stored remotely", ports.Uint32("bytes", resp.Length))
	return resp.Length, nil
}

// Fetch asks the remote side to transfer a stored image and saves the
// received payload. path may be the LAST sentinel; output empty picks a
// timestamped name. Returns the saved path.
func (c *Client) Fetch(path, output string) (string, *transport.Result, error) {
	if err := c.sendCommand(fmt.Sprintf("<ENVIAR:{path:%s}>", path)); err != nil {
		return "", nil, err
	}
	return c.receiveAndSave(output)
}

// Snapshot captures and transfers in one exchange.
func (c *Client) Snapshot(resolution, output string) (string, *transport.Result, error) {
	if err := c.sendCommand(fmt.Sprintf("<FOTO:{size_name:%s}>", normalizeResolution(resolution))); err != nil {
		return "", nil, err
	}
	return c.receiveAndSave(output)
}

// sendCommand clears stale input and writes one command line. Stale bytes
// from an aborted exchange would otherwise be mistaken for the response.
func (c *Client) sendCommand(cmd string) error {
	if err := c.link.ResetInputBuffer(); err != nil {
		return err
	}
	c.logger.Info("sending command", ports.String("command", cmd))
	return transport.WriteLine(c.link, cmd+"\r\n")
}

func (c *Client) receiveAndSave(output string) (string, *transport.Result, error) {
	res, err := c.receiver.Fetch()
	if err != nil {
		return "", nil, err
	}
	saved, err := c.store.SaveReceived(res.Payload, output)
	if err != nil {
		return "", res, fmt.Errorf("save received image: %w", err)
	}
	c.logger.Info("image saved",
		ports.String("path", saved),
		ports.Int("bytes", len(res.Payload)),
	)
	return saved, res, nil
}

func normalizeResolution(r string) string {
	return strings.ToUpper(strings.TrimSpace(r))
}
