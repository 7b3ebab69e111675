package cluster

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/swarm"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/onkernel/swarm-updater/lib/images"
)

// Client is the subset of swarm operations the updater relies on.
type Client interface {
	// ListServices returns all services in the order the engine reports them
	ListServices(ctx context.Context) ([]Service, error)

	// PullImage fetches the latest content for name and reports its repository digests
	PullImage(ctx context.Context, name string) (images.RemoteImage, error)

	// UpdateService re-points a service at ref and triggers a rolling update
	UpdateService(ctx context.Context, id, ref string) error

	// Info reports the swarm role of the attached node
	Info(ctx context.Context) (Info, error)
}

// DockerAPI is the part of the docker engine client used by NewDockerClient.
type DockerAPI interface {
	client.ServiceAPIClient
	client.ImageAPIClient
	client.SystemAPIClient
}

type dockerClient struct {
	api      DockerAPI
	logger   *slog.Logger
	keychain authn.Keychain
}

// DockerOption configures the docker adapter.
type DockerOption func(*dockerClient)

// WithKeychain sets where registry credentials for pulls and updates come from.
func WithKeychain(kc authn.Keychain) DockerOption {
	return func(d *dockerClient) { d.keychain = kc }
}

// NewDockerClient adapts a docker engine client to Client. Registry
// credentials are read from the docker config (~/.docker/config.json,
// $DOCKER_CONFIG and credential helpers) unless WithKeychain is given.
func NewDockerClient(api DockerAPI, logger *slog.Logger, opts ...DockerOption) Client {
	d := &dockerClient{
		api:      api,
		logger:   logger,
		keychain: authn.DefaultKeychain,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// auth returns the encoded credentials for ref. Lookup failures fall back
// to an anonymous request, which still works for public images.
func (d *dockerClient) auth(ctx context.Context, ref string) string {
	encoded, err := registryAuth(d.keychain, ref)
	if err != nil {
		d.logger.WarnContext(ctx, "no registry credentials, continuing anonymously", "image", ref, "error", err)
		return ""
	}
	return encoded
}

func (d *dockerClient) ListServices(ctx context.Context) ([]Service, error) {
	list, err := d.api.ServiceList(ctx, types.ServiceListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}

	services := make([]Service, 0, len(list))
	for _, s := range list {
		services = append(services, toService(s))
	}
	return services, nil
}

func (d *dockerClient) PullImage(ctx context.Context, name string) (images.RemoteImage, error) {
	rc, err := d.api.ImagePull(ctx, name, image.PullOptions{
		RegistryAuth: d.auth(ctx, name),
	})
	if err != nil {
		return images.RemoteImage{}, fmt.Errorf("pull %s: %w", name, err)
	}
	defer rc.Close()

	// The pull only completes once the progress stream is drained; errors
	// during the pull are reported inside the stream.
	if err := jsonmessage.DisplayJSONMessagesStream(rc, io.Discard, 0, false, nil); err != nil {
		return images.RemoteImage{}, fmt.Errorf("pull %s: %w", name, err)
	}

	inspect, _, err := d.api.ImageInspectWithRaw(ctx, name)
	if err != nil {
		return images.RemoteImage{}, fmt.Errorf("inspect %s: %w", name, err)
	}

	return images.RemoteImage{RepoDigests: inspect.RepoDigests}, nil
}

func (d *dockerClient) UpdateService(ctx context.Context, id, ref string) error {
	current, _, err := d.api.ServiceInspectWithRaw(ctx, id, types.ServiceInspectOptions{})
	if err != nil {
		return fmt.Errorf("inspect service %s: %w", id, err)
	}

	spec := current.Spec
	if spec.TaskTemplate.ContainerSpec == nil {
		return fmt.Errorf("update service %s: %w", id, ErrNoContainerSpec)
	}
	containerSpec := *spec.TaskTemplate.ContainerSpec
	containerSpec.Image = ref
	spec.TaskTemplate.ContainerSpec = &containerSpec

	// Workers pull the pinned image themselves and need the same credentials.
	resp, err := d.api.ServiceUpdate(ctx, current.ID, current.Version, spec, types.ServiceUpdateOptions{
		EncodedRegistryAuth: d.auth(ctx, ref),
	})
	if err != nil {
		return fmt.Errorf("update service %s: %w", id, err)
	}
	for _, w := range resp.Warnings {
		d.logger.WarnContext(ctx, "service update warning", "service", spec.Name, "warning", w)
	}
	return nil
}

func (d *dockerClient) Info(ctx context.Context) (Info, error) {
	info, err := d.api.Info(ctx)
	if err != nil {
		return Info{}, fmt.Errorf("engine info: %w", err)
	}
	return Info{
		LocalNodeActive:  info.Swarm.LocalNodeState == swarm.LocalNodeStateActive,
		ControlAvailable: info.Swarm.ControlAvailable,
	}, nil
}

// toService converts the engine's service object into the read-only view
func toService(s swarm.Service) Service {
	svc := Service{
		ID:   s.ID,
		Name: s.Spec.Name,
	}
	if cs := s.Spec.TaskTemplate.ContainerSpec; cs != nil {
		svc.Image = cs.Image
	}

	switch {
	case s.Spec.Mode.Replicated != nil:
		svc.Mode = ModeReplicated
		if r := s.Spec.Mode.Replicated.Replicas; r != nil {
			svc.Replicas = *r
		}
	case s.Spec.Mode.Global != nil:
		svc.Mode = ModeGlobal
	default:
		svc.Mode = ModeOther
	}
	return svc
}

type registryClient struct {
	Client
	resolver images.DigestResolver
}

// WithRegistryResolver returns a Client whose PullImage asks the registry for
// the current manifest digest instead of pulling through the engine.
func WithRegistryResolver(c Client, resolver images.DigestResolver) Client {
	return &registryClient{
		Client:   c,
		resolver: resolver,
	}
}

func (r *registryClient) PullImage(ctx context.Context, name string) (images.RemoteImage, error) {
	remote, err := r.resolver.Resolve(ctx, name)
	if err != nil {
		return images.RemoteImage{}, fmt.Errorf("resolve %s: %w", name, err)
	}
	return remote, nil
}
